package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/trivia-arena/internal/config"
	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/game/room"
	"github.com/palemoky/trivia-arena/internal/server/handler"
	"github.com/palemoky/trivia-arena/internal/server/session"
	"github.com/palemoky/trivia-arena/internal/storage"
	"github.com/palemoky/trivia-arena/internal/types"
)

// Server WebSocket 游戏服务器
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader

	clients map[string]types.ClientInterface
	mu      sync.RWMutex

	sessions *session.Manager
	rooms    *room.Manager
	handler  *handler.Handler

	rateLimiter   *RateLimiter
	originChecker *OriginChecker

	store *storage.RedisStore
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:           cfg,
		clients:       make(map[string]types.ClientInterface),
		rateLimiter:   NewRateLimiter(10, 30*time.Second),
		originChecker: NewOriginChecker(cfg.Server.AllowedOrigins),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	// Redis 不可用时降级为纯内存运行
	s.store = connectRedis(cfg)

	s.sessions = session.NewManager(s.store)
	s.rooms = room.NewManager(quiz.DefaultProvider(), s.store, cfg.Game)
	s.handler = handler.New(s, s.rooms, s.sessions)

	return s
}

// connectRedis 连接 Redis，失败时返回 nil
func connectRedis(cfg *config.Config) *storage.RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis 连接失败，房间快照功能关闭: %v", err)
		return nil
	}

	log.Printf("📶 Redis 已连接: %s", cfg.Redis.Addr)
	return storage.NewRedisStore(client)
}

// Start 启动 HTTP 服务，阻塞直到服务退出
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := s.cfg.Server.Addr()
	log.Printf("🎮 服务器启动: %s", addr)
	return http.ListenAndServe(addr, mux)
}

// Shutdown 关闭所有客户端连接
func (s *Server) Shutdown() {
	s.mu.Lock()
	clients := make([]types.ClientInterface, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

// RegisterClient 注册客户端
func (s *Server) RegisterClient(id string, client types.ClientInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[id] = client
}

// UnregisterClient 注销客户端
func (s *Server) UnregisterClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// GetClientByID 根据 ID 查找客户端
func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[id]
}

// GetOnlineCount 返回在线人数
func (s *Server) GetOnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// handleDisconnect 处理连接断开：标记会话离线并通知房间
func (s *Server) handleDisconnect(c *Client) {
	id := c.GetID()
	s.UnregisterClient(id)

	// 断线时把所在房间记进会话，重连时据此归位
	s.sessions.SetRoom(id, c.GetRoom())
	s.sessions.SetOffline(id)

	if code := c.GetRoom(); code != "" {
		if r := s.rooms.GetRoom(code); r != nil {
			r.Disconnect(id)
		}
	}

	log.Printf("👋 玩家 %s 断开连接，当前在线: %d", id, s.GetOnlineCount())
}
