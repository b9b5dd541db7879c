package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Assistant runs one websocket-backed conversation. Each text frame is a
// user turn; the reply frame is the model's answer verbatim. The session
// transcript lives server-side and dies with the connection.
func (s *Server) Assistant(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("assistant upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := s.Analyzer.StartAssistant()

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply, err := session.Send(c.Request.Context(), string(message))
		if err != nil {
			log.Printf("assistant turn: %v", err)
			if writeErr := conn.WriteJSON(gin.H{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
	}
}
