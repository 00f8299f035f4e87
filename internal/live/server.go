// Package live answers calculation requests over a websocket so that a form
// can recalculate while the user edits it.
package live

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/valve"
)

// Message types. The client sends calc and ping, the server answers with
// result, error and pong.
const (
	TypeCalc   = "calc"
	TypePing   = "ping"
	TypeResult = "result"
	TypeError  = "error"
	TypePong   = "pong"
)

type Msg struct {
	Type   string        `json:"type"`
	ID     string        `json:"id,omitempty"`
	Input  *valve.Input  `json:"input,omitempty"`
	Output *valve.Output `json:"output,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type Server struct {
	Network  *valve.Network
	Log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewServer(n *valve.Network, log logrus.FieldLogger, upgrader websocket.Upgrader) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Network: n, Log: log, upgrader: upgrader}
}

// ServeWS upgrades the request and serves the connection until the peer
// goes away.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	calc := valve.Calculate
	if s.Network != nil {
		calc = s.Network.Calculate
	}
	newHub(conn, calc, s.Log).run()
}
