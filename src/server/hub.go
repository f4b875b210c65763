package server

import (
	"encoding/json"
	"net/http"

	"venue-collections/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// RunHub is the main Hub loop. It returns once Stop is called.
func (s *APIServer) RunHub() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Add(1)
			// Send current state on connect
			client.send <- s.snapshot()

		case client := <-s.resend:
			// Only registered clients still own an open send channel
			if _, ok := s.clients[client]; ok {
				select {
				case client.send <- s.snapshot():
				default:
				}
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.connections.Add(-1)
				close(client.send)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					s.connections.Add(-1)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateState replaces the served state without notifying clients
func (s *APIServer) UpdateState(state *models.MLatestData) {
	if state == nil || state.Collections == nil {
		return
	}
	s.stateMutex.Lock()
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast replaces the served state and queues it for every client
func (s *APIServer) Broadcast(state *models.MLatestData) {
	if state == nil || state.Collections == nil {
		return
	}
	s.UpdateState(state)

	select {
	case s.broadcast <- state:
	case <-s.done:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update of %d", state.Timestamp)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MLatestData, 64),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}
	client.subscribe(cmd.Symbols)

	// Answer with the current state under the new subscription. The hub
	// owns client.send, so the reply goes through it.
	select {
	case s.resend <- client:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// filterState restricts a state to the given symbols. No symbols means all.
func filterState(state *models.MLatestData, symbols []string) *models.MLatestData {
	if len(symbols) == 0 {
		return state
	}

	filtered := models.NewMCollections()
	filtered.Failures = state.Collections.Failures
	filtered.VenueCount = state.Collections.VenueCount
	filtered.BuiltAt = state.Collections.BuiltAt

	for _, sym := range symbols {
		if venues, ok := state.Collections.Collections[sym]; ok {
			filtered.Collections[sym] = venues
		} else if venue, ok := state.Collections.SinglyAvailable[sym]; ok {
			filtered.SinglyAvailable[sym] = venue
		}
	}

	return &models.MLatestData{
		Type:        state.Type,
		Collections: filtered,
		Timestamp:   state.Timestamp,
		Metrics:     state.Metrics,
	}
}
