package live

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/valve"
)

const (
	writeWait  = 10 * time.Second
	queueDepth = 10
	maxMessage = 64 << 10
)

// hub serves one connection. Reads happen on run's goroutine, calculations
// on handleRequests and all writes on handleResponses.
type hub struct {
	conn *websocket.Conn
	calc func(valve.Input) (valve.Output, error)
	log  logrus.FieldLogger

	requests chan Msg
	replies  chan Msg
}

func newHub(conn *websocket.Conn, calc func(valve.Input) (valve.Output, error), log logrus.FieldLogger) *hub {
	return &hub{
		conn:     conn,
		calc:     calc,
		log:      log.WithField("remote", conn.RemoteAddr().String()),
		requests: make(chan Msg, queueDepth),
		replies:  make(chan Msg, queueDepth),
	}
}

func (h *hub) run() {
	defer h.conn.Close()
	h.conn.SetReadLimit(maxMessage)

	done := make(chan struct{})
	go func() {
		h.handleRequests()
		close(h.replies)
	}()
	go func() {
		h.handleResponses()
		close(done)
	}()

	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Warn("websocket closed")
			}
			break
		}
		var msg Msg
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Msg{Type: TypeError, Error: "invalid message"}
		}
		h.requests <- msg
	}
	close(h.requests)
	<-done
}

func (h *hub) handleRequests() {
	for msg := range h.requests {
		h.replies <- h.reply(msg)
	}
}

func (h *hub) reply(msg Msg) Msg {
	switch msg.Type {
	case TypeError:
		return msg
	case TypePing:
		return Msg{Type: TypePong, ID: msg.ID}
	case TypeCalc:
		if msg.Input == nil {
			return Msg{Type: TypeError, ID: msg.ID, Error: "input required"}
		}
		out, err := h.calc(*msg.Input)
		if err != nil {
			if !valve.IsCalculationError(err) {
				h.log.WithError(err).Error("calculation failed")
			}
			return Msg{Type: TypeError, ID: msg.ID, Error: err.Error()}
		}
		return Msg{Type: TypeResult, ID: msg.ID, Output: &out}
	default:
		return Msg{Type: TypeError, ID: msg.ID, Error: "no such type: " + msg.Type}
	}
}

func (h *hub) handleResponses() {
	for reply := range h.replies {
		h.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := h.conn.WriteJSON(&reply); err != nil {
			h.log.WithError(err).Warn("websocket write failed")
		}
	}
}
