package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create-room" // 创建房间
	MsgJoinRoom   MessageType = "join-room"   // 加入房间
	MsgLeaveRoom  MessageType = "leave-room"  // 离开房间

	// 游戏操作
	MsgStartGame      MessageType = "start-game"      // 房主开始游戏
	MsgSubmitAnswer   MessageType = "submit-answer"   // 提交答案
	MsgNextRound      MessageType = "next-round"      // 房主提前进入下一题
	MsgSelectCategory MessageType = "select-category" // 轮换模式：选择分类
	MsgSelectType     MessageType = "select-type"     // 轮换模式：选择题型
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"      // 连接成功
	MsgReconnected   MessageType = "reconnected"    // 重连成功
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgPlayerOffline MessageType = "player-offline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "player-online"  // 玩家上线通知

	// 房间相关
	MsgRoomCreated  MessageType = "room-created"  // 房间创建成功
	MsgRoomJoined   MessageType = "room-joined"   // 加入房间成功
	MsgJoinError    MessageType = "join-error"    // 加入房间失败
	MsgPlayerJoined MessageType = "player-joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player-left"   // 玩家离开
	MsgHostChanged  MessageType = "host-changed"  // 房主转移

	// 游戏流程
	MsgGameStarted    MessageType = "game-started"    // 游戏开始（标准模式，附第一题）
	MsgQuestion       MessageType = "question"        // 下一题广播
	MsgPlayerAnswered MessageType = "player-answered" // 答题人数更新
	MsgRoundResults   MessageType = "round-results"   // 本轮结果
	MsgGameOver       MessageType = "game-over"       // 游戏结束

	// 轮换模式流程
	MsgTurnStart         MessageType = "turn-start"         // 新回合开始（指定选择人）
	MsgCategorySelected  MessageType = "category-selected"  // 分类已选定
	MsgTypeSelected      MessageType = "type-selected"      // 题型已选定
	MsgQuestionGenerated MessageType = "question-generated" // 题目已生成
	MsgNoQuestions       MessageType = "no-questions"       // 无符合条件的题目

	// 错误
	MsgError MessageType = "error" // 错误消息
)
