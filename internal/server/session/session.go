package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/palemoky/trivia-arena/internal/storage"
)

const (
	// 断线后允许重连的时限
	reconnectTimeout = 2 * time.Minute
	// 离线会话保留时限
	sessionExpireTime = 10 * time.Minute
)

// PlayerSession 玩家会话（用于断线重连）。玩家身份本身是
// 连接级的临时身份，令牌让同一玩家在掉线后找回名单位置。
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	ReconnectToken string
	RoomCode       string

	DisconnectedAt time.Time
	IsOnline       bool

	mu sync.RWMutex
}

// Manager 会话管理器
type Manager struct {
	sessions map[string]*PlayerSession // playerID -> session
	tokens   map[string]string         // token -> playerID
	mu       sync.RWMutex

	store    *storage.RedisStore // 可为 nil（测试/无 Redis 运行）
	mirrorCh chan mirrorOp
}

// mirrorOp 一次镜像写入。data 为 nil 表示删除该玩家的镜像。
type mirrorOp struct {
	playerID string
	data     *storage.PlayerSessionData
}

// NewManager 创建会话管理器。store 非 nil 时会话变更会镜像到
// Redis，与房间镜像一样仅用于观测，权威状态在内存里。
func NewManager(store *storage.RedisStore) *Manager {
	m := &Manager{
		sessions: make(map[string]*PlayerSession),
		tokens:   make(map[string]string),
		store:    store,
	}

	// 镜像写入走单独协程，保证写入顺序与变更顺序一致
	if store != nil {
		m.mirrorCh = make(chan mirrorOp, 64)
		go m.mirrorLoop()
	}

	// 启动会话清理协程
	go m.cleanupLoop()

	return m
}

// Create 创建新会话并颁发重连令牌
func (m *Manager) Create(playerID, playerName string) *PlayerSession {
	m.mu.Lock()

	token := generateToken()

	s := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ReconnectToken: token,
		IsOnline:       true,
	}

	m.sessions[playerID] = s
	m.tokens[token] = playerID
	m.mu.Unlock()

	m.mirror(s)
	return s
}

// Get 获取会话
func (m *Manager) Get(playerID string) *PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[playerID]
}

// SetOffline 标记玩家离线
func (m *Manager) SetOffline(playerID string) {
	if s := m.Get(playerID); s != nil {
		s.mu.Lock()
		s.IsOnline = false
		s.DisconnectedAt = time.Now()
		s.mu.Unlock()
		m.mirror(s)
	}
}

// SetOnline 标记玩家上线
func (m *Manager) SetOnline(playerID string) {
	if s := m.Get(playerID); s != nil {
		s.mu.Lock()
		s.IsOnline = true
		s.DisconnectedAt = time.Time{}
		s.mu.Unlock()
		m.mirror(s)
	}
}

// SetName 记录玩家昵称
func (m *Manager) SetName(playerID, name string) {
	if s := m.Get(playerID); s != nil {
		s.mu.Lock()
		s.PlayerName = name
		s.mu.Unlock()
		m.mirror(s)
	}
}

// SetRoom 记录玩家所在房间
func (m *Manager) SetRoom(playerID, roomCode string) {
	if s := m.Get(playerID); s != nil {
		s.mu.Lock()
		s.RoomCode = roomCode
		s.mu.Unlock()
		m.mirror(s)
	}
}

// Delete 删除会话
func (m *Manager) Delete(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		delete(m.tokens, s.ReconnectToken)
		delete(m.sessions, playerID)
		m.unmirror(playerID)
	}
}

// Validate 校验重连令牌。令牌与玩家匹配、会话已离线且在重连
// 时限内才放行；在线会话的令牌一律拒绝，防止第二条连接顶号。
func (m *Manager) Validate(token, playerID string) *PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	storedPlayerID, ok := m.tokens[token]
	if !ok || storedPlayerID != playerID {
		return nil
	}

	s, ok := m.sessions[playerID]
	if !ok {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.IsOnline {
		return nil
	}
	if time.Since(s.DisconnectedAt) > reconnectTimeout {
		return nil
	}

	return s
}

// Room 返回会话记录的房间号
func (s *PlayerSession) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RoomCode
}

// cleanupLoop 定期清理过期会话
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup 清理离线超时的会话
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for playerID, s := range m.sessions {
		s.mu.RLock()
		expired := !s.IsOnline && time.Since(s.DisconnectedAt) > sessionExpireTime
		s.mu.RUnlock()

		if expired {
			delete(m.tokens, s.ReconnectToken)
			delete(m.sessions, playerID)
			m.unmirror(playerID)
		}
	}
}

// mirror 把会话镜像到 Redis
func (m *Manager) mirror(s *PlayerSession) {
	if m.store == nil {
		return
	}

	s.mu.RLock()
	data := &storage.PlayerSessionData{
		PlayerID:       s.PlayerID,
		PlayerName:     s.PlayerName,
		ReconnectToken: s.ReconnectToken,
		RoomCode:       s.RoomCode,
		IsOnline:       s.IsOnline,
	}
	if !s.DisconnectedAt.IsZero() {
		data.DisconnectedAt = s.DisconnectedAt.Unix()
	}
	s.mu.RUnlock()

	m.enqueueMirror(mirrorOp{playerID: data.PlayerID, data: data})
}

// unmirror 删除会话的 Redis 镜像
func (m *Manager) unmirror(playerID string) {
	if m.store == nil {
		return
	}
	m.enqueueMirror(mirrorOp{playerID: playerID})
}

// enqueueMirror 投递镜像写入，队列满时丢弃而不是阻塞会话操作
func (m *Manager) enqueueMirror(op mirrorOp) {
	select {
	case m.mirrorCh <- op:
	default:
	}
}

// mirrorLoop 顺序消费镜像写入
func (m *Manager) mirrorLoop() {
	for op := range m.mirrorCh {
		if op.data != nil {
			_ = m.store.SaveSession(context.Background(), op.data)
		} else {
			_ = m.store.DeleteSession(context.Background(), op.playerID)
		}
	}
}

// generateToken 生成重连令牌
func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
