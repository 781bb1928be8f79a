// Package ui 提供基于 Bubble Tea 的终端客户端界面
package ui

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/trivia-arena/internal/client"
	"github.com/palemoky/trivia-arena/internal/logger"
	"github.com/palemoky/trivia-arena/internal/protocol"
)

// 游戏阶段
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseName
	PhaseLobby
	PhaseJoinInput
	PhaseWaiting
	PhaseSelecting
	PhaseQuestion
	PhaseResults
	PhaseGameOver
)

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// LatencyMsg 延迟更新消息（毫秒）
type LatencyMsg int64

// OnlineModel 联网客户端的 model
type OnlineModel struct {
	client *client.Client
	phase  GamePhase
	errMsg string

	playerName string
	roomCode   string
	isHost     bool
	gameMode   protocol.GameMode
	players    []protocol.PlayerInfo
	latency    int64

	// 当前题目
	question      *protocol.QuestionView
	questionIndex int
	totalCount    int
	timeLimit     int
	answered      int
	submitted     bool

	// 轮换模式的回合状态
	turn       *protocol.TurnStartPayload
	categories []string

	// 结果
	results *protocol.RoundResultsPayload
	final   *protocol.GameOverPayload

	msgChan chan tea.Msg

	input  textinput.Model
	width  int
	height int
}

// NewOnlineModel 创建联网模式 model
func NewOnlineModel(serverURL string) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = "输入昵称..."
	ti.CharLimit = 20
	ti.Width = 24
	ti.Focus()

	c := client.NewClient(serverURL)
	msgChan := make(chan tea.Msg, 64)

	m := &OnlineModel{
		client:  c,
		phase:   PhaseConnecting,
		input:   ti,
		msgChan: msgChan,
	}

	c.OnMessage = func(msg *protocol.Message) {
		msgChan <- ServerMessage{Msg: msg}
	}
	c.OnError = func(err error) {
		msgChan <- ConnectionErrorMsg{Err: err}
	}
	c.OnLatencyUpdate = func(latency int64) {
		msgChan <- LatencyMsg(latency)
	}

	return m
}

// Init 建立连接并开始监听服务器消息
func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(m.connect, m.waitForServer)
}

func (m *OnlineModel) connect() tea.Msg {
	if err := m.client.Connect(); err != nil {
		return ConnectionErrorMsg{Err: err}
	}
	m.client.StartHeartbeat()
	return nil
}

// waitForServer 阻塞等待下一条服务器消息
func (m *OnlineModel) waitForServer() tea.Msg {
	return <-m.msgChan
}

// Update 处理消息
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ConnectionErrorMsg:
		m.errMsg = "连接错误: " + msg.Err.Error()
		return m, m.waitForServer

	case LatencyMsg:
		m.latency = int64(msg)
		return m, m.waitForServer

	case ServerMessage:
		m.handleServer(msg.Msg)
		return m, m.waitForServer

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleServer 按消息类型更新界面状态
func (m *OnlineModel) handleServer(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgConnected:
		m.phase = PhaseName

	case protocol.MsgRoomCreated:
		var p protocol.RoomCreatedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.roomCode, m.players, m.isHost, m.gameMode = p.RoomCode, p.Players, p.IsHost, p.GameMode
			m.phase = PhaseWaiting
		}

	case protocol.MsgRoomJoined:
		var p protocol.RoomJoinedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.roomCode, m.players, m.isHost, m.gameMode = p.RoomCode, p.Players, p.IsHost, p.GameMode
			m.phase = PhaseWaiting
		}

	case protocol.MsgJoinError:
		var p protocol.JoinErrorPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.errMsg = p.Message
		}
		m.phase = PhaseLobby

	case protocol.MsgPlayerJoined:
		var p protocol.PlayerJoinedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.players = p.Players
		}

	case protocol.MsgPlayerLeft:
		var p protocol.PlayerLeftPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.players = p.Players
		}

	case protocol.MsgHostChanged:
		var p protocol.HostChangedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.isHost = p.HostID == m.client.PlayerID
		}

	case protocol.MsgGameStarted, protocol.MsgQuestion, protocol.MsgQuestionGenerated:
		var p protocol.QuestionPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.question = &p.Question
			m.questionIndex = p.QuestionIndex
			m.totalCount = p.TotalQuestions
			m.timeLimit = p.TimeLimit
			m.answered = 0
			m.submitted = false
			m.results = nil
			m.phase = PhaseQuestion
			m.resetInput("输入答案...")
		}

	case protocol.MsgPlayerAnswered:
		var p protocol.PlayerAnsweredPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.answered = p.AnsweredCount
		}

	case protocol.MsgRoundResults:
		var p protocol.RoundResultsPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.results = &p
			m.phase = PhaseResults
		}

	case protocol.MsgGameOver:
		var p protocol.GameOverPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.final = &p
			m.phase = PhaseGameOver
		}

	case protocol.MsgTurnStart:
		var p protocol.TurnStartPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.turn = &p
			m.categories = p.AvailableCategoryIDs
			m.phase = PhaseSelecting
		}

	case protocol.MsgNoQuestions:
		m.errMsg = "没有符合条件的题目"

	case protocol.MsgError:
		var p protocol.ErrorPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.errMsg = p.Message
		}

	default:
		logger.Infof("未处理的消息类型: %s", msg.Type)
	}
}

// handleKey 处理按键
func (m *OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.client.Close()
		return m, tea.Quit
	}

	switch m.phase {
	case PhaseName:
		if msg.Type == tea.KeyEnter {
			name := strings.TrimSpace(m.input.Value())
			if name != "" {
				m.playerName = name
				m.phase = PhaseLobby
			}
			return m, nil
		}

	case PhaseLobby:
		switch msg.String() {
		case "c":
			m.errMsg = ""
			m.client.CreateRoom(m.playerName, protocol.RoomSettings{}, protocol.ModeStandard)
			return m, nil
		case "t":
			m.errMsg = ""
			m.client.CreateRoom(m.playerName, protocol.RoomSettings{}, protocol.ModeTurnBased)
			return m, nil
		case "j":
			m.errMsg = ""
			m.phase = PhaseJoinInput
			m.resetInput("输入房间号...")
			return m, nil
		case "q":
			m.client.Close()
			return m, tea.Quit
		}

	case PhaseJoinInput:
		if msg.Type == tea.KeyEnter {
			code := strings.TrimSpace(m.input.Value())
			if code != "" {
				m.client.JoinRoom(code, m.playerName)
			}
			return m, nil
		}
		if msg.Type == tea.KeyEsc {
			m.phase = PhaseLobby
			return m, nil
		}

	case PhaseWaiting:
		if msg.String() == "s" && m.isHost {
			m.client.StartGame(nil)
			return m, nil
		}
		if msg.String() == "q" {
			m.client.LeaveRoom()
			m.phase = PhaseLobby
			return m, nil
		}

	case PhaseSelecting:
		return m.handleSelectingKey(msg)

	case PhaseQuestion:
		return m.handleQuestionKey(msg)

	case PhaseResults:
		if msg.String() == "n" && m.isHost {
			m.client.NextRound()
			return m, nil
		}

	case PhaseGameOver:
		if msg.String() == "r" && m.isHost {
			m.client.StartGame(nil)
			return m, nil
		}
		if msg.String() == "q" {
			m.client.LeaveRoom()
			m.phase = PhaseLobby
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSelectingKey 轮换模式的分类/题型选择按键
func (m *OnlineModel) handleSelectingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.turn == nil {
		return m, nil
	}

	key := msg.String()
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return m, nil
	}

	myID := m.client.PlayerID
	if m.turn.CategorySelectorID == myID && n <= len(m.categories) {
		m.client.SelectCategory(m.categories[n-1])
	} else if m.turn.TypeSelectorID == myID {
		types := []protocol.QuestionType{
			protocol.TypeMultipleChoice,
			protocol.TypeFillBlank,
			protocol.TypeOrder,
			protocol.TypeMatch,
		}
		if n <= len(types) {
			m.client.SelectType(types[n-1])
		}
	}
	return m, nil
}

// handleQuestionKey 作答按键。选择题按数字作答，
// 其余题型在输入框中按逗号分隔录入后回车提交。
func (m *OnlineModel) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.question == nil || m.submitted {
		return m, nil
	}

	if m.question.Type == protocol.TypeMultipleChoice {
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.question.Options) {
			m.submitted = true
			m.client.SubmitAnswer(m.question.Options[n-1])
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.submitted = true

		switch m.question.Type {
		case protocol.TypeFillBlank:
			m.client.SubmitAnswer(text)
		case protocol.TypeOrder:
			m.client.SubmitAnswer(parseIntList(text))
		case protocol.TypeMatch:
			m.client.SubmitAnswer(parseMatchList(text))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *OnlineModel) resetInput(placeholder string) {
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.Focus()
}

// parseIntList 解析 "2,0,1" 形式的顺序作答
func parseIntList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// parseMatchList 解析 "0-2,1-0" 形式的连线作答
func parseMatchList(s string) []protocol.MatchSelection {
	var out []protocol.MatchSelection
	for _, part := range strings.Split(s, ",") {
		lr := strings.SplitN(strings.TrimSpace(part), "-", 2)
		if len(lr) != 2 {
			continue
		}
		l, err1 := strconv.Atoi(strings.TrimSpace(lr[0]))
		r, err2 := strconv.Atoi(strings.TrimSpace(lr[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, protocol.MatchSelection{Left: l, Right: r})
	}
	return out
}
