package handler

import (
	"log"
	"time"

	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/types"
)

// handlePing 心跳响应
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 断线重连：验证令牌后恢复原身份和房间
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess := h.sessions.Validate(payload.Token, payload.PlayerID)
	if sess == nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "重连令牌无效或已过期"))
		return
	}

	// 用原玩家 ID 重新注册，替换连接时分配的临时 ID。
	// 临时身份的会话随之作废，否则它会永远挂着在线标记
	h.server.UnregisterClient(client.GetID())
	h.sessions.Delete(client.GetID())
	client.SetID(sess.PlayerID)
	client.SetName(sess.PlayerName)
	h.server.RegisterClient(sess.PlayerID, client)
	h.sessions.SetOnline(sess.PlayerID)

	roomCode := sess.Room()
	if roomCode != "" {
		if r := h.rooms.GetRoom(roomCode); r != nil {
			client.SetRoom(roomCode)
			r.Reconnect(sess.PlayerID, client)
		} else {
			roomCode = ""
			h.sessions.SetRoom(sess.PlayerID, "")
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgReconnected, protocol.ReconnectedPayload{
		PlayerID:   sess.PlayerID,
		PlayerName: sess.PlayerName,
		RoomCode:   roomCode,
	}))

	log.Printf("📶 玩家 %s 重连成功 (房间: %s)", sess.PlayerID, roomCode)
}
