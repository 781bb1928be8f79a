// Package handler 将客户端消息分发到对应的处理函数
package handler

import (
	"log"

	"github.com/palemoky/trivia-arena/internal/game/room"
	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/server/session"
	"github.com/palemoky/trivia-arena/internal/types"
)

type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// Handler 消息分发器
type Handler struct {
	server   types.ServerInterface
	rooms    *room.Manager
	sessions *session.Manager

	routes map[protocol.MessageType]handlerFunc
}

// New 创建消息分发器
func New(server types.ServerInterface, rooms *room.Manager, sessions *session.Manager) *Handler {
	h := &Handler{
		server:   server,
		rooms:    rooms,
		sessions: sessions,
	}

	h.routes = map[protocol.MessageType]handlerFunc{
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  h.handleLeaveRoom,

		protocol.MsgStartGame:      h.handleStartGame,
		protocol.MsgSubmitAnswer:   h.handleSubmitAnswer,
		protocol.MsgNextRound:      h.handleNextRound,
		protocol.MsgSelectCategory: h.handleSelectCategory,
		protocol.MsgSelectType:     h.handleSelectType,
	}

	return h
}

// Handle 分发一条消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	fn, ok := h.routes[msg.Type]
	if !ok {
		log.Printf("⚠️ 未知消息类型: %s (玩家 %s)", msg.Type, client.GetID())
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	fn(client, msg)
}

// roomOf 查找玩家所在房间，不在房间时回发错误
func (h *Handler) roomOf(client types.ClientInterface) *room.Room {
	code := client.GetRoom()
	if code == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil
	}

	r := h.rooms.GetRoom(code)
	if r == nil {
		client.SetRoom("")
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return nil
	}

	return r
}
