package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`    // 重连令牌
	PlayerID string `json:"playerId"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	PlayerName string       `json:"playerName"`
	Settings   RoomSettings `json:"settings"`
	GameMode   GameMode     `json:"gameMode"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// StartGamePayload 开始游戏请求（标准模式由房主带题，轮换模式服务端生成）
type StartGamePayload struct {
	Questions []Question `json:"questions,omitempty"`
}

// SubmitAnswerPayload 提交答案请求，answer 按题型解析
type SubmitAnswerPayload struct {
	Answer json.RawMessage `json:"answer"`
}

// SelectCategoryPayload 选择分类请求
type SelectCategoryPayload struct {
	CategoryID string `json:"categoryId"`
}

// SelectTypePayload 选择题型请求
type SelectTypePayload struct {
	TypeID QuestionType `json:"typeId"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"playerId"`
	PlayerName     string `json:"playerName"`
	ReconnectToken string `json:"reconnectToken"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode,omitempty"` // 如果在房间中
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
	IsHost   bool         `json:"isHost"`
	GameMode GameMode     `json:"gameMode"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
	IsHost   bool         `json:"isHost"`
	GameMode GameMode     `json:"gameMode"`
}

// JoinErrorPayload 加入房间失败响应（仅发给请求者）
type JoinErrorPayload struct {
	Message string `json:"message"`
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Players []PlayerInfo `json:"players"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	Players []PlayerInfo `json:"players"`
}

// HostChangedPayload 房主转移通知
type HostChangedPayload struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
}

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerOnlinePayload 玩家重连通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// GameStartedPayload 游戏开始通知（标准模式，附第一题）
type GameStartedPayload struct {
	Question       QuestionView `json:"question"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeLimit      int          `json:"timeLimitSeconds"`
}

// QuestionPayload 下一题广播
type QuestionPayload struct {
	Question       QuestionView `json:"question"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeLimit      int          `json:"timeLimitSeconds"`
}

// PlayerAnsweredPayload 答题进度广播
type PlayerAnsweredPayload struct {
	AnsweredCount int `json:"answeredCount"`
	TotalPlayers  int `json:"totalPlayers"` // 在线玩家数
}

// PlayerResult 单个玩家的一轮成绩
type PlayerResult struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Rank       int     `json:"rank"`
	IsCorrect  bool    `json:"isCorrect"`
	Points     int     `json:"points"`
	TimeTaken  float64 `json:"timeTakenSeconds"`
	TotalScore int     `json:"totalScore"`
}

// RoundResultsPayload 本轮结果广播
type RoundResultsPayload struct {
	Results       []PlayerResult  `json:"results"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
}

// GameOverPayload 游戏结束广播，finalResults 按总分排名
type GameOverPayload struct {
	FinalResults []PlayerInfo `json:"finalResults"`
	Winner       PlayerInfo   `json:"winner"`
}

// TurnStartPayload 轮换模式新回合通知
type TurnStartPayload struct {
	TurnIndex            int      `json:"turnIndex"`
	TotalTurns           int      `json:"totalTurns"`
	CategorySelectorID   string   `json:"categorySelectorId"`
	TypeSelectorID       string   `json:"typeSelectorId"`
	AvailableCategoryIDs []string `json:"availableCategoryIds"`
	SelectionTimeout     int      `json:"selectionTimeoutSeconds"`
}

// CategorySelectedPayload 分类选定广播
type CategorySelectedPayload struct {
	CategoryID string `json:"categoryId"`
	NextPhase  string `json:"nextPhase"` // turn_selecting_type
	AutoPicked bool   `json:"autoPicked,omitempty"`
}

// TypeSelectedPayload 题型选定广播
type TypeSelectedPayload struct {
	TypeID     QuestionType `json:"typeId"`
	AutoPicked bool         `json:"autoPicked,omitempty"`
}

// QuestionGeneratedPayload 轮换模式题目生成广播
type QuestionGeneratedPayload struct {
	Question       QuestionView `json:"question"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeLimit      int          `json:"timeLimitSeconds"`
}

// NoQuestionsPayload 无题目可用通知
type NoQuestionsPayload struct {
	Message string `json:"message"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	IsHost      bool   `json:"isHost"`
	Connected   bool   `json:"connected"`
	HasAnswered bool   `json:"hasAnswered"`
}
