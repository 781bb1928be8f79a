package client

import (
	"encoding/json"
	"time"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// --- 便捷方法 ---

// CreateRoom 创建房间
func (c *Client) CreateRoom(playerName string, settings protocol.RoomSettings, mode protocol.GameMode) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		PlayerName: playerName,
		Settings:   settings,
		GameMode:   mode,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, playerName string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   roomCode,
		PlayerName: playerName,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// StartGame 开始游戏
func (c *Client) StartGame(questions []protocol.Question) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgStartGame, protocol.StartGamePayload{
		Questions: questions,
	}))
}

// SubmitAnswer 提交答案，answer 按题型组织
func (c *Client) SubmitAnswer(answer any) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgSubmitAnswer, protocol.SubmitAnswerPayload{
		Answer: raw,
	}))
}

// NextRound 房主请求进入下一题
func (c *Client) NextRound() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgNextRound, nil))
}

// SelectCategory 轮换模式选择分类
func (c *Client) SelectCategory(categoryID string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgSelectCategory, protocol.SelectCategoryPayload{
		CategoryID: categoryID,
	}))
}

// SelectType 轮换模式选择题型
func (c *Client) SelectType(typeID protocol.QuestionType) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgSelectType, protocol.SelectTypePayload{
		TypeID: typeID,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
