package ws_mapfeed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/porchrate/core/internal/model"
)

const (
	EventRatingCreated = "RATING_CREATED"
	EventRatingDeleted = "RATING_DELETED"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	Conn  *websocket.Conn
	Send  chan []byte
	Theme model.Theme
}

// Hub fans committed ledger changes out to live map clients, grouped by
// theme. Slow clients are dropped rather than blocking the broadcast.
type Hub struct {
	mu sync.RWMutex

	// Keep track of the set of clients watching each theme.
	themes map[model.Theme]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		themes: make(map[model.Theme]map[*Client]bool),
		logger: logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.themes[client.Theme]; !ok {
		h.themes[client.Theme] = make(map[*Client]bool)
	}
	h.themes[client.Theme][client] = true

	h.logger.Info("map client registered", "theme", client.Theme)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.themes[client.Theme]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.themes, client.Theme)
		}
	}
	h.logger.Info("map client unregistered", "theme", client.Theme)
}

// RatingCreated implements the ledger notifier: broadcast to the rating's
// theme.
func (h *Hub) RatingCreated(rating model.Rating) {
	h.BroadcastToTheme(rating.Theme, Event{
		Type:    EventRatingCreated,
		Payload: rating,
	})
}

// RatingDeleted broadcasts to every theme: deletion by id does not know
// which partition held the record.
func (h *Hub) RatingDeleted(ratingID string) {
	event := Event{
		Type: EventRatingDeleted,
		Payload: map[string]interface{}{
			"rating_id": ratingID,
		},
	}
	for _, theme := range model.Themes() {
		h.BroadcastToTheme(theme, event)
	}
}

func (h *Hub) BroadcastToTheme(theme model.Theme, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messageBytes, _ := json.Marshal(event)

	if clients, ok := h.themes[theme]; ok {
		for client := range clients {
			select {
			case client.Send <- messageBytes:
			default:
				close(client.Send)
				delete(h.themes[theme], client)
			}
		}
	}
}

func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, _, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}
