package handler

import (
	"log"
	"strings"

	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/types"
)

const maxPlayerNameLen = 20

// sanitizeName 清理玩家昵称，为空时回退到默认名
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	runes := []rune(name)
	if len(runes) > maxPlayerNameLen {
		name = string(runes[:maxPlayerNameLen])
	}
	return name
}

// handleCreateRoom 创建房间，创建者自动成为房主
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if client.GetRoom() != "" {
		// 已在房间中，先离开旧房间
		h.leaveCurrentRoom(client)
	}

	name := sanitizeName(payload.PlayerName)
	client.SetName(name)
	h.sessions.SetName(client.GetID(), name)

	r := h.rooms.CreateRoom(client, payload.Settings, payload.GameMode)
	log.Printf("🏠 玩家 %s 创建房间 %s (模式: %s)", name, r.Code(), r.Mode())
}

// handleJoinRoom 加入指定房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if client.GetRoom() != "" {
		h.leaveCurrentRoom(client)
	}

	code := strings.ToUpper(strings.TrimSpace(payload.RoomCode))
	r := h.rooms.GetRoom(code)
	if r == nil {
		client.SendMessage(protocol.NewJoinError(protocol.ErrorMessages[protocol.ErrCodeRoomNotFound]))
		return
	}

	name := sanitizeName(payload.PlayerName)
	client.SetName(name)
	h.sessions.SetName(client.GetID(), name)

	// 满员、游戏中等拒绝原因由房间内部判定并回发 join-error，
	// 成功时由房间写回客户端的房间号
	r.Join(client, false)
}

// handleLeaveRoom 主动离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, msg *protocol.Message) {
	if client.GetRoom() == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	h.leaveCurrentRoom(client)
	log.Printf("👋 玩家 %s 离开房间", client.GetID())
}

// leaveCurrentRoom 将玩家从当前房间移除并清理关联状态
func (h *Handler) leaveCurrentRoom(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	if r := h.rooms.GetRoom(code); r != nil {
		r.Leave(client.GetID())
	}

	client.SetRoom("")
	h.sessions.SetRoom(client.GetID(), "")
}
