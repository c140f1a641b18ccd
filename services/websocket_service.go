package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tasktracker/broker"
	"tasktracker/metrics"
	"tasktracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256

	// Every new client starts subscribed to the whole task collection.
	allTasksSubscription = "tasks"
)

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	Start()
	Stop()
	HandleConnection(c *gin.Context)
	BroadcastMessage(message []byte)
	ClientCount() int
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID string
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte

	mu            sync.Mutex
	closed        bool
	subscriptions map[string]bool
}

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WebSocketService fans task events from the broker out to websocket clients.
type WebSocketService struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	broadcast    chan []byte
	clientsMutex sync.RWMutex

	upgrader websocket.Upgrader
	consumer broker.Consumer
	metrics  *metrics.Metrics

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWebSocketService creates a new WebSocket service reading from consumer.
func NewWebSocketService(consumer broker.Consumer, allowOrigin func(r *http.Request) bool, m *metrics.Metrics) *WebSocketService {
	if allowOrigin == nil {
		allowOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBufferSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		consumer: consumer,
		metrics:  m,
	}
}

// Start runs the hub loop in a goroutine.
func (ws *WebSocketService) Start() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.isRunning {
		return
	}
	ws.isRunning = true
	ws.stopChan = make(chan struct{})
	ws.doneChan = make(chan struct{})
	go ws.run(ws.stopChan, ws.doneChan)
	log.Println("WebSocket service started")
}

// Stop gracefully shuts down the WebSocket service
func (ws *WebSocketService) Stop() {
	ws.mu.Lock()
	if !ws.isRunning {
		ws.mu.Unlock()
		return
	}
	ws.isRunning = false
	close(ws.stopChan)
	done := ws.doneChan
	ws.mu.Unlock()

	<-done

	ws.clientsMutex.Lock()
	for id, client := range ws.clients {
		client.close()
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(ws.clients, id)
	}
	ws.clientsMutex.Unlock()
	ws.metrics.SetWebSocketClients(0)

	log.Println("WebSocket service stopped")
}

// BroadcastMessage sends a message to all connected clients
func (ws *WebSocketService) BroadcastMessage(message []byte) {
	select {
	case ws.broadcast <- message:
	default:
		log.Printf("Warning: broadcast channel is full, discarding message")
	}
}

func (ws *WebSocketService) ClientCount() int {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	return len(ws.clients)
}

func (ws *WebSocketService) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var incoming <-chan broker.Message
	if ws.consumer != nil {
		incoming = ws.consumer.Messages()
	}

	for {
		select {
		case <-stop:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			ws.clients[client.ID] = client
			count := len(ws.clients)
			ws.clientsMutex.Unlock()
			ws.metrics.SetWebSocketClients(count)
			log.Printf("Client connected: %s (user: %s)", client.ID, client.UserID)

		case client := <-ws.unregister:
			ws.removeClient(client)

		case message := <-ws.broadcast:
			ws.deliver(message, func(*Client) bool { return true })

		case msg, ok := <-incoming:
			if !ok {
				log.Println("Broker channel closed, WebSocket service will no longer receive task events")
				incoming = nil
				continue
			}
			ws.handleBrokerMessage(msg)
		}
	}
}

func (ws *WebSocketService) removeClient(client *Client) {
	ws.clientsMutex.Lock()
	_, ok := ws.clients[client.ID]
	if ok {
		delete(ws.clients, client.ID)
	}
	count := len(ws.clients)
	ws.clientsMutex.Unlock()

	if ok {
		client.close()
		ws.metrics.SetWebSocketClients(count)
		log.Printf("Client disconnected: %s", client.ID)
	}
}

// deliver queues message for every client accepted by match. Clients whose
// send buffer is full are dropped.
func (ws *WebSocketService) deliver(message []byte, match func(*Client) bool) int {
	var slow []*Client
	sent := 0

	ws.clientsMutex.RLock()
	for _, client := range ws.clients {
		if !match(client) {
			continue
		}
		if client.enqueue(message) {
			sent++
		} else {
			slow = append(slow, client)
		}
	}
	ws.clientsMutex.RUnlock()

	for _, client := range slow {
		log.Printf("Client %s send buffer full, removing client", client.ID)
		ws.removeClient(client)
	}
	return sent
}

// handleBrokerMessage routes a task event to subscribed clients.
func (ws *WebSocketService) handleBrokerMessage(msg broker.Message) {
	var event struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("Error parsing broker message: %v", err)
		return
	}

	taskID, _ := event.Payload["task_id"].(string)

	jsonData, err := json.Marshal(models.NewWebSocketMessage(models.EventMessage, event.Type, event.Payload).WithResource(taskID))
	if err != nil {
		log.Printf("Error serializing server message: %v", err)
		return
	}

	sent := ws.deliver(jsonData, func(c *Client) bool {
		return c.subscribedTo(allTasksSubscription, "task:"+taskID)
	})
	log.Printf("Sent %s event to %d clients", event.Type, sent)
}

// HandleConnection upgrades the request to a websocket and registers the client.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	userID := "anonymous"
	if subject, ok := c.Get("subject"); ok {
		if s, ok := subject.(string); ok && s != "" {
			userID = s
		}
	}

	client := &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Hub:           ws,
		Conn:          conn,
		Send:          make(chan []byte, sendBufferSize),
		subscriptions: map[string]bool{allTasksSubscription: true},
	}

	select {
	case ws.register <- client:
	case <-ws.stopped():
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func (ws *WebSocketService) stopped() <-chan struct{} {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.isRunning {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return ws.stopChan
}

func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) subscribedTo(keys ...string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if c.subscriptions[k] {
			return true
		}
	}
	return false
}

// readPump handles incoming messages from the WebSocket client
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.stopped():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading from WebSocket: %v", err)
			}
			break
		}

		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage handles messages received from the client
func (c *Client) processMessage(msg []byte) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(msg, &clientMsg); err != nil {
		log.Printf("Error parsing client message: %v", err)
		c.sendError("invalid message")
		return
	}

	switch clientMsg.Type {
	case "subscribe":
		c.handleSubscription(clientMsg, true)
	case "unsubscribe":
		c.handleSubscription(clientMsg, false)
	case "ping":
		// keepalive
	default:
		log.Printf("Unknown message type: %s", clientMsg.Type)
		c.sendError("unknown message type: " + clientMsg.Type)
	}
}

func (c *Client) sendError(reason string) {
	data, err := json.Marshal(models.NewWebSocketMessage(models.ErrorMessage, "", map[string]interface{}{
		"error": reason,
	}))
	if err == nil {
		c.enqueue(data)
	}
}

// handleSubscription adds or removes a subscription. The payload names either
// the whole collection ({"resource":"tasks"}) or a single task
// ({"resource":"task","id":"..."}).
func (c *Client) handleSubscription(msg ClientMessage, subscribe bool) {
	var payload struct {
		Resource string `json:"resource"`
		ID       string `json:"id,omitempty"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Resource == "" {
		log.Printf("Error parsing subscription payload: %v", err)
		c.sendError("invalid subscription")
		return
	}

	key := payload.Resource
	if payload.ID != "" {
		key = payload.Resource + ":" + payload.ID
	}

	c.mu.Lock()
	if subscribe {
		c.subscriptions[key] = true
	} else {
		delete(c.subscriptions, key)
	}
	c.mu.Unlock()

	if !subscribe {
		return
	}

	confirmation, err := json.Marshal(models.NewWebSocketMessage(models.SubscriptionMessage, "confirmed", map[string]interface{}{
		"resource": payload.Resource,
		"id":       payload.ID,
	}))
	if err == nil {
		c.enqueue(confirmation)
	}
}
