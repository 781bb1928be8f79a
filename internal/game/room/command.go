package room

import (
	"encoding/json"
	"time"

	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/types"
)

// command 房间命令的封闭集合。网关的每条入站消息和每次定时器触发
// 都翻译成一条命令，由房间协程逐条消费。
type command interface{ isCommand() }

type cmdJoin struct {
	client types.ClientInterface
	asHost bool
}

type cmdLeave struct{ playerID string }

type cmdDisconnect struct{ playerID string }

type cmdReconnect struct {
	playerID string
	client   types.ClientInterface
}

type cmdStartGame struct {
	playerID  string
	questions []protocol.Question
}

type cmdSubmitAnswer struct {
	playerID string
	answer   json.RawMessage
	at       time.Time
}

type cmdSelectCategory struct {
	playerID   string
	categoryID string
	auto       bool
}

type cmdSelectType struct {
	playerID string
	typeID   protocol.QuestionType
	auto     bool
}

type cmdNextRound struct{ playerID string }

// cmdTimerFired 定时器到期。gen 与当前不符的触发属于已被取代的
// 旧定时器，处理时直接丢弃。
type cmdTimerFired struct{ gen uint64 }

func (cmdJoin) isCommand()           {}
func (cmdLeave) isCommand()          {}
func (cmdDisconnect) isCommand()     {}
func (cmdReconnect) isCommand()      {}
func (cmdStartGame) isCommand()      {}
func (cmdSubmitAnswer) isCommand()   {}
func (cmdSelectCategory) isCommand() {}
func (cmdSelectType) isCommand()     {}
func (cmdNextRound) isCommand()      {}
func (cmdTimerFired) isCommand()     {}

// --- 对外提交接口（网关调用，全部异步） ---

// Join 玩家加入房间
func (r *Room) Join(client types.ClientInterface, asHost bool) {
	r.enqueue(cmdJoin{client: client, asHost: asHost})
}

// Leave 玩家显式离开房间
func (r *Room) Leave(playerID string) {
	r.enqueue(cmdLeave{playerID: playerID})
}

// Disconnect 玩家掉线（保留名单位置）
func (r *Room) Disconnect(playerID string) {
	r.enqueue(cmdDisconnect{playerID: playerID})
}

// Reconnect 玩家凭同一身份重连
func (r *Room) Reconnect(playerID string, client types.ClientInterface) {
	r.enqueue(cmdReconnect{playerID: playerID, client: client})
}

// StartGame 房主开始游戏
func (r *Room) StartGame(playerID string, questions []protocol.Question) {
	r.enqueue(cmdStartGame{playerID: playerID, questions: questions})
}

// SubmitAnswer 提交答案，提交时间在入队前采样
func (r *Room) SubmitAnswer(playerID string, answer json.RawMessage) {
	r.enqueue(cmdSubmitAnswer{playerID: playerID, answer: answer, at: time.Now()})
}

// SelectCategory 轮换模式：选择分类
func (r *Room) SelectCategory(playerID, categoryID string) {
	r.enqueue(cmdSelectCategory{playerID: playerID, categoryID: categoryID})
}

// SelectType 轮换模式：选择题型
func (r *Room) SelectType(playerID string, typeID protocol.QuestionType) {
	r.enqueue(cmdSelectType{playerID: playerID, typeID: typeID})
}

// NextRound 房主提前进入下一题
func (r *Room) NextRound(playerID string) {
	r.enqueue(cmdNextRound{playerID: playerID})
}
