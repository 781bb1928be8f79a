package room

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/trivia-arena/internal/config"
	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/storage"
	"github.com/palemoky/trivia-arena/internal/types"
)

const (
	roomCodeLength = 6
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// 空房间兜底清扫间隔
	cleanupInterval = 1 * time.Minute
)

// Manager 房间注册表：房间号 → 房间。只负责创建、查找和回收，
// 游戏逻辑全部在各房间自己的单写者边界内，这里一把锁足够。
type Manager struct {
	provider quiz.Provider
	store    *storage.RedisStore // 可为 nil（测试/无 Redis 运行）
	gameCfg  config.GameConfig

	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewManager 创建房间注册表
func NewManager(provider quiz.Provider, store *storage.RedisStore, gameCfg config.GameConfig) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		gameCfg:  gameCfg,
		rooms:    make(map[string]*Room),
	}

	// 启动房间清理协程
	go m.cleanupLoop()

	return m
}

// CreateRoom 创建房间并让创建者以房主身份加入
func (m *Manager) CreateRoom(client types.ClientInterface, settings protocol.RoomSettings, mode protocol.GameMode) *Room {
	if mode == "" {
		mode = protocol.ModeStandard
	}
	if settings.TimePerQuestionSeconds <= 0 {
		settings.TimePerQuestionSeconds = m.gameCfg.TimePerQuestion
	}

	m.mu.Lock()
	code := m.generateRoomCode()
	r := New(Options{
		Code:             code,
		Mode:             mode,
		Settings:         settings,
		Provider:         m.provider,
		MaxPlayers:       m.gameCfg.MaxPlayers,
		TimePerQuestion:  time.Duration(settings.TimePerQuestionSeconds) * time.Second,
		SelectionTimeout: m.gameCfg.SelectionTimeoutDuration(),
		ResultsInterval:  m.gameCfg.ResultsIntervalDuration(),
		OnEmpty:          m.RemoveRoom,
		OnSnapshot:       m.saveSnapshot,
	})
	m.rooms[code] = r
	m.mu.Unlock()

	r.Join(client, true)

	return r
}

// GetRoom 按房间号查找，不存在返回 nil
func (m *Manager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// RemoveRoom 摘除房间并释放房间号
func (m *Manager) RemoveRoom(code string) {
	m.mu.Lock()
	r, exists := m.rooms[code]
	if exists {
		delete(m.rooms, code)
	}
	m.mu.Unlock()

	if !exists {
		return
	}

	r.Stop()
	if m.store != nil {
		go func() { _ = m.store.DeleteRoom(context.Background(), code) }()
	}
}

// RoomCount 当前活跃房间数
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// generateRoomCode 生成 6 位大写字母数字房间号，碰撞重试。
// 调用方必须持有 m.mu。
func (m *Manager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := m.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// saveSnapshot 把房间状态镜像到 Redis（观测用，非权威数据）
func (m *Manager) saveSnapshot(data *storage.RoomData) {
	if m.store == nil {
		return
	}
	go func() { _ = m.store.SaveRoom(context.Background(), data.Code, data) }()
}

// cleanupLoop 定期清扫
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup 回收空房间和长时间无人开局的大厅房间。
// 名单非空且在游戏中的房间永不回收。
func (m *Manager) cleanup() {
	m.mu.RLock()
	var stale []string
	for code, r := range m.rooms {
		info := r.Info()
		switch {
		case info.PlayerCount == 0:
			stale = append(stale, code)
		case info.Status == StatusLobby && time.Since(info.LastActivity) > m.gameCfg.LobbyTimeoutDuration():
			stale = append(stale, code)
		}
	}
	m.mu.RUnlock()

	for _, code := range stale {
		log.Printf("🧹 房间 %s 空闲超时，已清理", code)
		m.RemoveRoom(code)
	}
}
