package monitoring

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// PredictionEvent 广播给订阅端的预测事件
type PredictionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Flights   int       `json:"flights"`
	Labels    []int     `json:"labels"`
	Cached    bool      `json:"cached"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// PredictionFeed WebSocket中心，向所有已连接客户端广播预测事件
type PredictionFeed struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
}

// NewPredictionFeed 创建预测事件广播中心
func NewPredictionFeed() *PredictionFeed {
	return &PredictionFeed{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
}

// Run 主循环，处理注册、注销与广播
func (f *PredictionFeed) Run() {
	for {
		select {
		case c := <-f.register:
			f.mu.Lock()
			f.clients[c] = true
			f.mu.Unlock()
		case c := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.clients[c]; ok {
				delete(f.clients, c)
				close(c.send)
			}
			f.mu.Unlock()
		case message := <-f.broadcast:
			f.mu.RLock()
			for c := range f.clients {
				select {
				case c.send <- message:
				default:
					// 客户端写缓冲已满，丢弃该客户端
					go func(stale *client) { f.unregister <- stale }(c)
				}
			}
			f.mu.RUnlock()
		case <-f.done:
			f.mu.Lock()
			for c := range f.clients {
				close(c.send)
				c.conn.Close()
			}
			f.clients = make(map[*client]bool)
			f.mu.Unlock()
			return
		}
	}
}

// Stop 停止广播并断开所有客户端
func (f *PredictionFeed) Stop() {
	close(f.done)
}

// Publish 广播一条预测事件
func (f *PredictionFeed) Publish(event PredictionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal prediction event: %v", err)
		return
	}
	select {
	case f.broadcast <- payload:
	default:
		// 广播队列已满，丢弃事件而不是阻塞预测请求
	}
}

// HandleWS 升级连接并接入广播中心
func (f *PredictionFeed) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	f.register <- c

	go c.writePump()
	go c.readPump(f)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(f *PredictionFeed) {
	defer func() {
		f.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
