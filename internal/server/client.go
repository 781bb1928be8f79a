package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// 心跳超时，超过该时间没收到 pong 则认为连接断开
	pongWait = 60 * time.Second
	// 心跳发送间隔，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 单条消息大小上限
	maxMessageSize = 4096
)

// Client 表示一个 WebSocket 连接
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	server   *Server
	roomCode string

	send      chan []byte
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewClient 创建客户端实例
func NewClient(conn *websocket.Conn, server *Server) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Conn:   conn,
		server: server,
		send:   make(chan []byte, 64),
	}
}

func (c *Client) GetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ID
}

// SetID 重连时恢复原玩家 ID
func (c *Client) SetID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ID = id
}

func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Name
}

// SetName 设置玩家昵称
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Name = name
}

// GetRoom 返回玩家所在房间号，不在任何房间时为空字符串
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// SendMessage 编码并发送一条消息，发送队列满时丢弃并断开连接
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := msg.Encode()
	if err != nil {
		log.Printf("⚠️ 消息编码失败: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("⚠️ 玩家 %s 发送队列已满，断开连接", c.ID)
		c.Close()
	}
}

// Close 关闭连接，只会执行一次
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump 读取循环，每个连接一个 goroutine
func (c *Client) ReadPump() {
	defer func() {
		c.server.handleDisconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("📴 玩家 %s 连接异常关闭: %v", c.ID, err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump 写入循环，定期发送 ping 保活
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
