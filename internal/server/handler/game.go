package handler

import (
	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/types"
)

// handleStartGame 房主开始游戏。标准模式可随请求携带题目，
// 轮换模式题目在每回合选择后生成。
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	r := h.roomOf(client)
	if r == nil {
		return
	}

	payload, err := protocol.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r.StartGame(client.GetID(), payload.Questions)
}

// handleSubmitAnswer 提交当前题目的答案
func (h *Handler) handleSubmitAnswer(client types.ClientInterface, msg *protocol.Message) {
	r := h.roomOf(client)
	if r == nil {
		return
	}

	payload, err := protocol.ParsePayload[protocol.SubmitAnswerPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r.SubmitAnswer(client.GetID(), payload.Answer)
}

// handleNextRound 房主在结果页提前进入下一题
func (h *Handler) handleNextRound(client types.ClientInterface, msg *protocol.Message) {
	r := h.roomOf(client)
	if r == nil {
		return
	}

	r.NextRound(client.GetID())
}

// handleSelectCategory 轮换模式：本回合选择人选择分类
func (h *Handler) handleSelectCategory(client types.ClientInterface, msg *protocol.Message) {
	r := h.roomOf(client)
	if r == nil {
		return
	}

	payload, err := protocol.ParsePayload[protocol.SelectCategoryPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r.SelectCategory(client.GetID(), payload.CategoryID)
}

// handleSelectType 轮换模式：本回合选择人选择题型
func (h *Handler) handleSelectType(client types.ClientInterface, msg *protocol.Message) {
	r := h.roomOf(client)
	if r == nil {
		return
	}

	payload, err := protocol.ParsePayload[protocol.SelectTypePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r.SelectType(client.GetID(), payload.TypeID)
}
