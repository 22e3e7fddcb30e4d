package websocket

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"pitchhub/services"

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

// LiveClient wraps a websocket connection with a write lock, since replies
// and chunk frames can race otherwise.
type LiveClient struct {
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// SafeWriteJSON safely writes JSON data to the client's WebSocket connection
func (lc *LiveClient) SafeWriteJSON(v interface{}) error {
	lc.writeMu.Lock()
	defer lc.writeMu.Unlock()
	return lc.Conn.WriteJSON(v)
}

type liveInbound struct {
	Message string `json:"message"`
}

type liveFrame struct {
	Type      string `json:"type"` // chunk | turn | error
	Content   string `json:"content,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Turn      int    `json:"turn,omitempty"`
	Error     string `json:"error,omitempty"`
}

// LiveSimulationHandler streams a session over websocket: each inbound
// trainee message is processed as a normal turn, the client reply is
// forwarded chunk by chunk as the backend produces it, and a final turn
// frame carries the metadata.
func LiveSimulationHandler(c *gin.Context) {
	sessionID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &LiveClient{Conn: conn}
	defer conn.Close()

	for {
		var inbound liveInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("live session %s read error: %v", sessionID, err)
			}
			return
		}
		if strings.TrimSpace(inbound.Message) == "" {
			client.SafeWriteJSON(liveFrame{Type: "error", Error: "empty message"})
			continue
		}

		result, err := services.GetSimulationService().ProcessMessageStream(c.Request.Context(), sessionID, inbound.Message, func(chunk string) {
			if werr := client.SafeWriteJSON(liveFrame{Type: "chunk", Content: chunk}); werr != nil {
				log.Printf("live session %s chunk write failed: %v", sessionID, werr)
			}
		})
		if err != nil {
			client.SafeWriteJSON(liveFrame{Type: "error", Error: err.Error()})
			if err == services.ErrSessionNotFound || err == services.ErrSessionEnded {
				return
			}
			continue
		}

		client.SafeWriteJSON(liveFrame{
			Type:      "turn",
			Sentiment: result.Sentiment,
			Phase:     result.Phase,
			Turn:      result.TurnNumber,
		})
	}
}
