package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/circuit-dev/circuit/db"
	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/services"
	"github.com/circuit-dev/circuit/internal/types"
	"github.com/circuit-dev/circuit/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	projectClients   = make(map[string]map[*websocket.Conn]bool)
	projectClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type wsEvent struct {
	Type      string                `json:"type"`
	ProjectID string                `json:"project_id"`
	Message   *services.MessageView `json:"message,omitempty"`
}

// BroadcastMessage pushes a newly posted message to every connection watching
// the project.
func BroadcastMessage(projectID string, message services.MessageView) {
	projectClientsMu.RLock()
	clients, exists := projectClients[projectID]
	if !exists || len(clients) == 0 {
		projectClientsMu.RUnlock()
		return
	}

	// Copy the set so the lock is not held while writing to sockets
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	projectClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(wsEvent{
			Type:      "message",
			ProjectID: projectID,
			Message:   &message,
		})

		if err != nil {
			log.Printf("Failed to broadcast message to client: %v", err)
			projectClientsMu.Lock()
			if clients, exists := projectClients[projectID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(projectClients, projectID)
				}
			}
			projectClientsMu.Unlock()
			conn.Close()
		}
	}
}

func WebSocket(c *gin.Context) {
	projectID, ok := projectIDParam(c)

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Same gate as any other project read: members only.
	member, err := authz.CanViewProject(db.DB, userID, projectID)

	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	key := c.Param("project_id")

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	projectClientsMu.Lock()
	if projectClients[key] == nil {
		projectClients[key] = make(map[*websocket.Conn]bool)
	}
	projectClients[key][conn] = true
	projectClientsMu.Unlock()

	defer func() {
		projectClientsMu.Lock()

		if clients, exists := projectClients[key]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(projectClients, key)
			}
		}

		projectClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for project %s", key)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(wsEvent{
		Type:      "connected",
		ProjectID: key,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	done := make(chan struct{})

	defer func() {
		ticker.Stop()
		close(done)
	}()

	go func() {
		// Send pings periodically until the connection goes away; the
		// done channel releases this goroutine on close, a stopped
		// ticker alone never fires again.
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					log.Printf("Failed to set write deadline for project %s: %v", key, err)
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("Ping failed for project %s: %v", key, err)
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for project %s: %v", key, err)
			break
		}

		// The feed is read-only; inbound frames are drained and ignored.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %s: %v", key, err)
			}
			break
		}
	}
}
