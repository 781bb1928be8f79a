package room

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/storage"
	"github.com/palemoky/trivia-arena/internal/types"
)

// Status 房间状态
type Status string

const (
	StatusLobby             Status = "lobby"
	StatusInRound           Status = "in_round"
	StatusRoundResults      Status = "round_results"
	StatusSelectingCategory Status = "turn_selecting_category"
	StatusSelectingType     Status = "turn_selecting_type"
	StatusFinished          Status = "finished"
)

// Player 房间中的玩家。掉线玩家保留在名单中（分数和回合顺位不丢失），
// 只有显式 leave-room 才会移除。
type Player struct {
	ID          string
	Name        string
	Client      types.ClientInterface // nil 表示掉线
	Connected   bool
	Score       int
	HasAnswered bool
}

// answerRecord 一轮内单个玩家的提交记录，同一玩家只记第一次
type answerRecord struct {
	raw         json.RawMessage
	submittedAt time.Time
}

// Options 创建房间的参数
type Options struct {
	Code     string
	Mode     protocol.GameMode
	Settings protocol.RoomSettings
	Provider quiz.Provider

	MaxPlayers       int
	TimePerQuestion  time.Duration // 答题窗口
	SelectionTimeout time.Duration // 轮换模式选择窗口
	ResultsInterval  time.Duration // 结果展示窗口，到时自动下一题

	// OnEmpty 名单清空时回调（注册表摘除房间）
	OnEmpty func(code string)
	// OnSnapshot 状态变化时回调（Redis 镜像，非权威数据）
	OnSnapshot func(data *storage.RoomData)
}

// Info 房间的只读快照，供注册表清理和房间列表使用
type Info struct {
	Code           string
	Mode           protocol.GameMode
	Status         Status
	PlayerCount    int
	ConnectedCount int
	CreatedAt      time.Time
	LastActivity   time.Time
}

// Room 一局独立的多人对战。所有状态只由 run 协程读写，
// 外部（网关、定时器）一律通过 inbox 提交命令，单写者串行处理。
type Room struct {
	opts Options

	code     string
	mode     protocol.GameMode
	settings protocol.RoomSettings

	hostID  string
	players []*Player // 插入顺序即加入顺序

	status    Status
	questions []protocol.Question
	current   int // currentQuestionIndex
	answers   map[string]answerRecord

	roundOpenedAt time.Time
	roundDeadline time.Time

	// 轮换模式
	turnIndex           int
	totalTurns          int
	categorySelectorID  string
	typeSelectorID      string
	availableCategories []quiz.Category
	selectedCategory    string

	// 定时器：回调只投递命令，绝不直接改状态；
	// gen 不匹配的触发是被取代的旧定时器，直接丢弃
	timer    *time.Timer
	timerGen uint64

	createdAt time.Time

	inbox chan command
	done  chan struct{}

	infoMu sync.RWMutex
	info   Info
}

// New 创建房间并启动其单写者协程
func New(opts Options) *Room {
	r := &Room{
		opts:      opts,
		code:      opts.Code,
		mode:      opts.Mode,
		settings:  opts.Settings,
		status:    StatusLobby,
		answers:   make(map[string]answerRecord),
		createdAt: time.Now(),
		inbox:     make(chan command, 256),
		done:      make(chan struct{}),
	}
	r.publishInfo()

	go r.run()

	return r
}

// Code 返回房间号
func (r *Room) Code() string { return r.code }

// Mode 返回游戏模式
func (r *Room) Mode() protocol.GameMode { return r.mode }

// Info 返回房间快照
func (r *Room) Info() Info {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.info
}

// Stop 终止房间协程。只能由注册表在摘除房间后调用。
func (r *Room) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// run 单写者循环：串行消费命令，房间状态无需加锁
func (r *Room) run() {
	for {
		select {
		case cmd := <-r.inbox:
			r.apply(cmd)
			r.publishInfo()
			r.snapshot()
		case <-r.done:
			r.cancelTimer()
			return
		}
	}
}

// enqueue 投递命令。房间已销毁时丢弃。
func (r *Room) enqueue(cmd command) {
	select {
	case r.inbox <- cmd:
	case <-r.done:
	}
}

// apply 处理单条命令
func (r *Room) apply(cmd command) {
	switch c := cmd.(type) {
	case cmdJoin:
		r.handleJoin(c)
	case cmdLeave:
		r.handleLeave(c.playerID)
	case cmdDisconnect:
		r.handleDisconnect(c.playerID)
	case cmdReconnect:
		r.handleReconnect(c)
	case cmdStartGame:
		r.handleStartGame(c)
	case cmdSubmitAnswer:
		r.handleSubmitAnswer(c)
	case cmdSelectCategory:
		r.handleSelectCategory(c)
	case cmdSelectType:
		r.handleSelectType(c)
	case cmdNextRound:
		r.handleNextRound(c.playerID)
	case cmdTimerFired:
		r.handleTimerFired(c.gen)
	default:
		log.Printf("⚠️ 房间 %s 收到未知命令 %T", r.code, cmd)
	}
}

// publishInfo 更新只读快照
func (r *Room) publishInfo() {
	connected := 0
	for _, p := range r.players {
		if p.Connected {
			connected++
		}
	}

	r.infoMu.Lock()
	r.info = Info{
		Code:           r.code,
		Mode:           r.mode,
		Status:         r.status,
		PlayerCount:    len(r.players),
		ConnectedCount: connected,
		CreatedAt:      r.createdAt,
		LastActivity:   time.Now(),
	}
	r.infoMu.Unlock()
}

// --- 广播辅助 ---

func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		if p.Connected && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) broadcastExcept(playerID string, msg *protocol.Message) {
	for _, p := range r.players {
		if p.ID == playerID {
			continue
		}
		if p.Connected && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) unicast(p *Player, msg *protocol.Message) {
	if p != nil && p.Connected && p.Client != nil {
		p.Client.SendMessage(msg)
	}
}

// findPlayer 按 ID 找玩家，不存在返回 nil
func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// playersInfo 生成玩家信息列表（按加入顺序）
func (r *Room) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.players))
	for i, p := range r.players {
		infos[i] = protocol.PlayerInfo{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			IsHost:      p.ID == r.hostID,
			Connected:   p.Connected,
			HasAnswered: p.HasAnswered,
		}
	}
	return infos
}

// connectedCount 在线玩家数
func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// connectedAnsweredCount 本轮已作答且仍在线的玩家数
func (r *Room) connectedAnsweredCount() int {
	n := 0
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		if _, ok := r.answers[p.ID]; ok {
			n++
		}
	}
	return n
}

// snapshot 投递 Redis 镜像
func (r *Room) snapshot() {
	if r.opts.OnSnapshot == nil {
		return
	}
	r.opts.OnSnapshot(r.toRoomData())
}

// toRoomData 构建用于 Redis 序列化的数据
func (r *Room) toRoomData() *storage.RoomData {
	players := make([]storage.PlayerData, len(r.players))
	for i, p := range r.players {
		players[i] = storage.PlayerData{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
			IsHost:    p.ID == r.hostID,
		}
	}
	return &storage.RoomData{
		Code:          r.code,
		Mode:          string(r.mode),
		Status:        string(r.status),
		Players:       players,
		QuestionIndex: r.current,
		CreatedAt:     r.createdAt.Unix(),
		UpdatedAt:     time.Now().Unix(),
	}
}
