package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/pathfit/internal/clippath"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type  string  `json:"type"` // "rescale" or "progress"
	ID    string  `json:"id"`   // echoed back so clients can match replies
	Angle float64 `json:"angle,omitempty"`
	rescaleRequest
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string           `json:"type"` // "hello", "result" or "error"
	ID        string           `json:"id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Result    *rescaleResponse `json:"result,omitempty"`
	ClipPath  string           `json:"clip_path,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// handleWebSocket answers rescale and progress requests for as long as the
// client keeps the connection open.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxDocumentSize)

	session := uuid.New().String()
	s.send(conn, wsResponse{Type: "hello", SessionID: session})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read (session %s): %v", session, err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, wsResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		switch req.Type {
		case "rescale":
			resp, err := s.rescale(r.Context(), req.rescaleRequest)
			if err != nil {
				s.send(conn, wsResponse{Type: "error", ID: req.ID, Error: err.Error()})
				continue
			}
			s.send(conn, wsResponse{Type: "result", ID: req.ID, Result: resp})
		case "progress":
			s.send(conn, wsResponse{Type: "result", ID: req.ID, ClipPath: clippath.Progress(req.Angle)})
		default:
			s.send(conn, wsResponse{Type: "error", ID: req.ID, Error: "unknown message type: " + req.Type})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
