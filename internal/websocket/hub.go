package websocket

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// HubInterface 游戏层只依赖这两个发送能力
type HubInterface interface {
	BroadcastToPlayers(userIDs []string, msg OutgoingMessage)
	SendToPlayer(userID string, msg OutgoingMessage)
}

type Hub struct {
	clients    map[string]*Client // userID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	logger     *log.Logger
}

type broadcastReq struct {
	UserIDs []string
	Message OutgoingMessage
}

type sendReq struct {
	UserID  string
	Message OutgoingMessage
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq, 64),
		sendOne:    make(chan sendReq, 64),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
		logger:     logger.WithPrefix("hub"),
	}
}

func (h *Hub) Run() {
	h.logger.Info("Hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.UserID]; ok && old != c {
				// 同一玩家重连：旧连接下线
				close(old.Send)
			}
			h.clients[c.UserID] = c
			h.logger.Debug("register", "user", c.UserID, "clients", len(h.clients))
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.UserID]; ok && cur == c {
				delete(h.clients, c.UserID)
				close(c.Send)
				h.logger.Debug("unregister", "user", c.UserID, "clients", len(h.clients))
			}
			h.mu.Unlock()

		case req := <-h.broadcast:
			h.mu.RLock()
			for _, id := range req.UserIDs {
				if client, ok := h.clients[id]; ok {
					h.push(client, req.Message)
				}
			}
			h.mu.RUnlock()

		case req := <-h.sendOne:
			h.mu.RLock()
			if client, ok := h.clients[req.UserID]; ok {
				h.push(client, req.Message)
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// push 慢客户端的消息直接丢弃，不阻塞 Hub
func (h *Hub) push(c *Client, msg OutgoingMessage) {
	select {
	case c.Send <- msg:
	default:
		h.logger.Warn("send buffer full, dropping message", "user", c.UserID, "event", msg.Event)
	}
}

// Broadcast to multiple players
func (h *Hub) BroadcastToPlayers(userIDs []string, msg OutgoingMessage) {
	select {
	case h.broadcast <- broadcastReq{UserIDs: userIDs, Message: msg}:
	case <-h.quit:
	}
}

// Send to a single player (safe concurrent)
func (h *Hub) SendToPlayer(userID string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{UserID: userID, Message: msg}:
	case <-h.quit:
	}
}

// Incoming 玩家发来的消息，由 GameManager 消费
func (h *Hub) Incoming() <-chan IncomingMessage {
	return h.incoming
}

func (h *Hub) deliver(msg IncomingMessage) {
	select {
	case h.incoming <- msg:
	case <-h.quit:
	}
}

// Connected 玩家当前是否在线
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) join(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
		close(c.Send)
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}
