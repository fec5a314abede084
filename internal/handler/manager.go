package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"butterfly-story/internal/metrics"
	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SinkWebSocket - метка приёмника в метриках.
const SinkWebSocket = "websocket"

const sendBuffer = 256

// Client представляет собой одно WebSocket соединение подписчика ленты развилок.
type Client struct {
	ID     string
	Player string // Пусто для анонимного подписчика
	Conn   *websocket.Conn
	send   chan []byte
}

// NewClient создает клиента с буферизованной очередью отправки.
func NewClient(id, player string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Player: player, Conn: conn, send: make(chan []byte, sendBuffer)}
}

// ConnectionManager управляет активными WebSocket соединениями и рассылает им события.
type ConnectionManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan string
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	logger     *zap.Logger
}

var _ interfaces.ChoiceEventPublisher = (*ConnectionManager)(nil)

// NewConnectionManager создает и запускает новый менеджер соединений.
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ConnectionManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan string),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
		logger:     logger.Named("ConnectionManager"),
	}
	go m.run()
	return m
}

func (m *ConnectionManager) run() {
	m.logger.Info("ConnectionManager запущен")
	for {
		select {
		case <-m.done:
			m.mu.Lock()
			for id, client := range m.clients {
				delete(m.clients, id)
				close(client.send)
			}
			m.mu.Unlock()
			m.logger.Info("ConnectionManager остановлен")
			return

		case client := <-m.register:
			m.mu.Lock()
			if old, ok := m.clients[client.ID]; ok {
				close(old.send)
			}
			m.clients[client.ID] = client
			m.mu.Unlock()
			m.logger.Debug("Клиент зарегистрирован", zap.String("clientID", client.ID), zap.String("player", client.Player))

		case id := <-m.unregister:
			m.mu.Lock()
			if client, ok := m.clients[id]; ok {
				delete(m.clients, id)
				close(client.send)
				m.logger.Debug("Клиент удалён", zap.String("clientID", id))
			}
			m.mu.Unlock()

		case message := <-m.broadcast:
			m.mu.Lock()
			for id, client := range m.clients {
				select {
				case client.send <- message:
				default:
					// Медленный клиент отключается, а не тормозит остальных.
					m.logger.Warn("Очередь отправки переполнена, отключаем клиента", zap.String("clientID", id))
					delete(m.clients, id)
					close(client.send)
				}
			}
			m.mu.Unlock()
		}
	}
}

// RegisterClient регистрирует нового клиента. После Close ничего не делает.
func (m *ConnectionManager) RegisterClient(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
		close(client.send)
	}
}

// UnregisterClient удаляет клиента.
func (m *ConnectionManager) UnregisterClient(id string) {
	select {
	case m.unregister <- id:
	case <-m.done:
	}
}

// ClientCount возвращает число активных подписчиков.
func (m *ConnectionManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// PublishChoiceEvent рассылает событие всем подключенным клиентам.
func (m *ConnectionManager) PublishChoiceEvent(ctx context.Context, event models.ChoiceEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal choice event: %w", err)
	}
	select {
	case m.broadcast <- body:
		return nil
	case <-m.done:
		metrics.EventsPublishFailed.WithLabelValues(SinkWebSocket).Inc()
		return fmt.Errorf("connection manager is closed")
	case <-ctx.Done():
		metrics.EventsPublishFailed.WithLabelValues(SinkWebSocket).Inc()
		return ctx.Err()
	}
}

// Close останавливает менеджер и закрывает очереди всех клиентов.
func (m *ConnectionManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// readPump читает соединение только ради control-фреймов и обнаружения закрытия.
func (c *Client) readPump(manager *ConnectionManager, logger *zap.Logger) {
	defer func() {
		manager.UnregisterClient(c.ID)
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		logger.Debug("Received unexpected message from client (ignored)")
	}
}

// writePump откачивает сообщения из канала send в WebSocket соединение.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
