package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Schema is applied by Migrate. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS turbines (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS valves (
	id SERIAL PRIMARY KEY,
	turbine_id INTEGER REFERENCES turbines(id) ON DELETE SET NULL,
	drawing TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	verified BOOLEAN NOT NULL DEFAULT false,
	verifier TEXT NOT NULL DEFAULT '',
	bushing_drawing TEXT NOT NULL DEFAULT '',
	rod_drawing TEXT NOT NULL DEFAULT '',
	rod_diameter DOUBLE PRECISION NOT NULL DEFAULT 0,
	rod_accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
	bushing_accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
	clearance DOUBLE PRECISION NOT NULL DEFAULT 0,
	rounding_radius DOUBLE PRECISION NOT NULL DEFAULT 0,
	section_lengths DOUBLE PRECISION[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS results (
	id SERIAL PRIMARY KEY,
	public_id UUID NOT NULL UNIQUE,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	valve_drawing TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	parameters JSONB NOT NULL,
	output JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS results_valve_drawing_idx ON results (valve_drawing);
`

// Open connects to Postgres. sslmode defaults to require.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	if connStr == "" {
		connStr = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string
	query := "SELECT id, password FROM users WHERE login=$1"
	if err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash); err != nil {
		return 0, "", notFound(err)
	}
	return id, hash, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int) (User, error) {
	var u User
	query := "SELECT id, login, email, created_at FROM users WHERE id=$1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Login, &u.Email, &u.CreatedAt)
	return u, notFound(err)
}

func (r *PostgresRepository) ListTurbines(ctx context.Context) ([]Turbine, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM turbines ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Turbine
	for rows.Next() {
		var t Turbine
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateTurbine(ctx context.Context, name string) (Turbine, error) {
	t := Turbine{Name: name}
	err := r.db.QueryRowContext(ctx, "INSERT INTO turbines (name) VALUES ($1) RETURNING id", name).Scan(&t.ID)
	return t, err
}

func (r *PostgresRepository) DeleteTurbine(ctx context.Context, id int) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM turbines WHERE id=$1", id))
}

func (r *PostgresRepository) TurbineByValve(ctx context.Context, drawing string) (Turbine, error) {
	var t Turbine
	query := `SELECT t.id, t.name FROM turbines t JOIN valves v ON v.turbine_id = t.id WHERE v.drawing=$1`
	err := r.db.QueryRowContext(ctx, query, drawing).Scan(&t.ID, &t.Name)
	return t, notFound(err)
}

const valveColumns = `v.id, v.turbine_id, v.drawing, v.type, v.source, v.verified, v.verifier,
	v.bushing_drawing, v.rod_drawing, v.rod_diameter, v.rod_accuracy, v.bushing_accuracy,
	v.clearance, v.rounding_radius, v.section_lengths`

type scanner interface {
	Scan(dest ...any) error
}

func scanValve(s scanner) (Valve, error) {
	var v Valve
	var turbine sql.NullInt64
	err := s.Scan(&v.ID, &turbine, &v.Drawing, &v.Type, &v.Source, &v.Verified, &v.Verifier,
		&v.BushingDrawing, &v.RodDrawing, &v.RodDiameter, &v.RodAccuracy, &v.BushingAccuracy,
		&v.Clearance, &v.RoundingRadius, pq.Array(&v.SectionLengths))
	if turbine.Valid {
		id := int(turbine.Int64)
		v.TurbineID = &id
	}
	return v, err
}

func (r *PostgresRepository) queryValves(ctx context.Context, query string, args ...any) ([]Valve, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Valve
	for rows.Next() {
		v, err := scanValve(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListValves(ctx context.Context) ([]Valve, error) {
	return r.queryValves(ctx, "SELECT "+valveColumns+" FROM valves v ORDER BY v.drawing")
}

func (r *PostgresRepository) ValvesByTurbine(ctx context.Context, turbine string) ([]Valve, error) {
	return r.queryValves(ctx, "SELECT "+valveColumns+
		" FROM valves v JOIN turbines t ON v.turbine_id = t.id WHERE t.name=$1 ORDER BY v.drawing", turbine)
}

func (r *PostgresRepository) ValveByDrawing(ctx context.Context, drawing string) (Valve, error) {
	v, err := scanValve(r.db.QueryRowContext(ctx, "SELECT "+valveColumns+" FROM valves v WHERE v.drawing=$1", drawing))
	return v, notFound(err)
}

func (r *PostgresRepository) ValveByID(ctx context.Context, id int) (Valve, error) {
	v, err := scanValve(r.db.QueryRowContext(ctx, "SELECT "+valveColumns+" FROM valves v WHERE v.id=$1", id))
	return v, notFound(err)
}

func valveArgs(v Valve) []any {
	lengths := v.SectionLengths
	if lengths == nil {
		lengths = []float64{}
	}
	return []any{v.TurbineID, v.Drawing, v.Type, v.Source, v.Verified, v.Verifier,
		v.BushingDrawing, v.RodDrawing, v.RodDiameter, v.RodAccuracy, v.BushingAccuracy,
		v.Clearance, v.RoundingRadius, pq.Array(lengths)}
}

func (r *PostgresRepository) CreateValve(ctx context.Context, v Valve) (Valve, error) {
	query := `INSERT INTO valves (turbine_id, drawing, type, source, verified, verifier,
		bushing_drawing, rod_drawing, rod_diameter, rod_accuracy, bushing_accuracy,
		clearance, rounding_radius, section_lengths)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, valveArgs(v)...).Scan(&v.ID)
	return v, err
}

func (r *PostgresRepository) UpdateValve(ctx context.Context, v Valve) (Valve, error) {
	query := `UPDATE valves SET turbine_id=$1, drawing=$2, type=$3, source=$4, verified=$5, verifier=$6,
		bushing_drawing=$7, rod_drawing=$8, rod_diameter=$9, rod_accuracy=$10, bushing_accuracy=$11,
		clearance=$12, rounding_radius=$13, section_lengths=$14 WHERE id=$15`
	args := append(valveArgs(v), v.ID)
	if err := affected(r.db.ExecContext(ctx, query, args...)); err != nil {
		return Valve{}, err
	}
	return v, nil
}

func (r *PostgresRepository) DeleteValve(ctx context.Context, id int) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM valves WHERE id=$1", id))
}

func (r *PostgresRepository) SaveResult(ctx context.Context, res Result) (Result, error) {
	if res.PublicID == "" {
		res.PublicID = uuid.NewString()
	}
	query := `INSERT INTO results (public_id, user_id, valve_drawing, parameters, output)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, res.PublicID, res.UserID, res.ValveDrawing,
		[]byte(res.Parameters), []byte(res.Output)).Scan(&res.ID, &res.CreatedAt)
	return res, err
}

func (r *PostgresRepository) queryResults(ctx context.Context, query string, arg any) ([]Result, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var res Result
		var params, output []byte
		if err := rows.Scan(&res.ID, &res.PublicID, &res.UserID, &res.ValveDrawing, &res.CreatedAt, &params, &output); err != nil {
			return nil, err
		}
		res.Parameters, res.Output = params, output
		out = append(out, res)
	}
	return out, rows.Err()
}

const resultColumns = "id, public_id, user_id, valve_drawing, created_at, parameters, output"

func (r *PostgresRepository) ResultsByValve(ctx context.Context, drawing string) ([]Result, error) {
	return r.queryResults(ctx, "SELECT "+resultColumns+" FROM results WHERE valve_drawing=$1 ORDER BY created_at DESC", drawing)
}

func (r *PostgresRepository) ResultsByUser(ctx context.Context, userID int) ([]Result, error) {
	return r.queryResults(ctx, "SELECT "+resultColumns+" FROM results WHERE user_id=$1 ORDER BY created_at DESC", userID)
}

func (r *PostgresRepository) DeleteResult(ctx context.Context, id, userID int) error {
	return affected(r.db.ExecContext(ctx, "DELETE FROM results WHERE id=$1 AND user_id=$2", id, userID))
}
