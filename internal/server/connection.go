package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// handleWebSocket 处理新的 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)
	if !s.rateLimiter.Allow(ip) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	if s.GetOnlineCount() >= s.cfg.Server.MaxConnections {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(conn, s)
	s.RegisterClient(client.ID, client)

	go client.WritePump()

	// 先创建会话再下发 connected，客户端拿到令牌后才能断线重连
	sess := s.sessions.Create(client.ID, "")
	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       client.ID,
		ReconnectToken: sess.ReconnectToken,
	}))

	log.Printf("📶 新连接: %s (IP %s)，当前在线: %d", client.ID, ip, s.GetOnlineCount())

	client.ReadPump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, _ := json.Marshal(map[string]any{
		"status": "ok",
		"online": s.GetOnlineCount(),
		"rooms":  s.rooms.RoomCount(),
	})
	fmt.Fprint(w, string(body))
}
