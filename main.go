package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"Rodcalc/internal/account"
	"Rodcalc/internal/auth"
	"Rodcalc/internal/calc/batch"
	"Rodcalc/internal/calc/design"
	"Rodcalc/internal/calc/importer"
	"Rodcalc/internal/calc/report"
	"Rodcalc/internal/calc/valve"
	"Rodcalc/internal/catalog"
	"Rodcalc/internal/config"
	"Rodcalc/internal/live"
	"Rodcalc/internal/middleware"
	"Rodcalc/internal/repo"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") //у меня нет домена это тестовый сервер
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, store repo.Repository, network *valve.Network, logger *log.Logger) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Log: logger, Insecure: !cfg.TLS()}
	limiter := auth.NewIPRateLimiter(1, 3)

	mux.Use(middleware.RequestID, middleware.Recover(logger), middleware.AccessLog(logger))

	api := mux.PathPrefix("/api").Subrouter()
	api.Handle("/login", limiter.LimitMiddleware(http.HandlerFunc(authEnv.AuthHandler))).Methods("POST")
	api.Handle("/register", limiter.LimitMiddleware(http.HandlerFunc(authEnv.RegisterHandler))).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	accountH := &account.Handler{Repo: store, Log: logger}
	secureApi.HandleFunc("/me", accountH.Me).Methods("GET")
	secureApi.HandleFunc("/results", accountH.Results).Methods("GET")

	valveH := &valve.Handler{Network: network, Log: logger}
	reportH := &report.Handler{Network: network, Log: logger}
	batchH := &batch.Handler{Network: network}
	importH := &importer.Handler{Network: network, Log: logger}
	designH := &design.Handler{Network: network, Log: logger}

	secureApi.HandleFunc("/tools/valve/calc", valveH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/valve/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/valve/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/valve/import", importH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/valve/export", importH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/valve/template", importH.Template).Methods("GET")
	secureApi.HandleFunc("/tools/valve/envelope", designH.Envelope).Methods("POST")
	secureApi.HandleFunc("/tools/valve/sizing", designH.Sizing).Methods("POST")

	catalogH := &catalog.Handler{Repo: store, Network: network, Log: logger}
	catalogH.Routes(secureApi)

	liveS := live.NewServer(network, logger, websocket.Upgrader{})
	secureApi.HandleFunc("/ws/calc", liveS.ServeWS).Methods("GET")

	authFileServer := http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "auth")))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	mainFileServer := http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "main")))
	mux.PathPrefix("/").
		Handler(mainFileServer)
}

// openStore connects to Postgres when DATABASE_URL is set and keeps
// everything in memory otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (repo.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, using in-memory storage")
		return repo.NewMemoryRepository(), func() {}, nil
	}
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Connected to PostgreSQL")
	return repo.NewPostgresRepository(db), func() { db.Close() }, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	logger := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		logger.Fatal(err)
	}

	solver, err := config.LoadSolver(cfg.SolverConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Ошибка чтения настроек решателя")
	}
	network := solver.Network(nil, logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Ошибка подключения к базе данных")
	}
	defer closeStore()

	mux := mux.NewRouter()
	HandleList(mux, cfg, store, network, logger)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(log.Fields{"addr": cfg.Addr, "tls": cfg.TLS()}).Info("Starting server")
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received!")
	logger.Info("Закрытие активных соединений")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Ошибка при остановке сервера")
	}
	logger.Info("Сервер успешно остановлен")

	wg.Wait()
}
