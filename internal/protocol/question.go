package protocol

// QuestionType 题目类型
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice" // 单选题
	TypeFillBlank      QuestionType = "fill-blank"      // 填空题
	TypeOrder          QuestionType = "order"           // 排序题
	TypeMatch          QuestionType = "match"           // 连线题
)

// ValidQuestionType 检查题目类型是否合法
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case TypeMultipleChoice, TypeFillBlank, TypeOrder, TypeMatch:
		return true
	}
	return false
}

// Question 完整题目（含答案，仅服务端持有，客户端提交的题目原样透传）
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Category string       `json:"category,omitempty"`
	Text     string       `json:"text"`
	Points   int          `json:"points,omitempty"`

	// 单选题 / 填空题
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`

	// 排序题
	Items        []OrderItem `json:"items,omitempty"`
	CorrectOrder []int       `json:"correctOrder,omitempty"`

	// 连线题
	Pairs []MatchPair `json:"pairs,omitempty"`
}

// OrderItem 排序题的单个选项
type OrderItem struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// MatchPair 连线题的一对匹配项
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// PairItem 连线题广播时左右列的单项，ID 对应原始配对序号
type PairItem struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QuestionView 广播给客户端的题目视图，答案字段已剥离
type QuestionView struct {
	ID         string       `json:"id"`
	Type       QuestionType `json:"type"`
	Category   string       `json:"category,omitempty"`
	Text       string       `json:"text"`
	Points     int          `json:"points,omitempty"`
	Options    []string     `json:"options,omitempty"`
	Items      []OrderItem  `json:"items,omitempty"`
	LeftItems  []PairItem   `json:"leftItems,omitempty"`
	RightItems []PairItem   `json:"rightItems,omitempty"`
}

// MatchSelection 连线题提交的一条连线，左右均为原始配对序号
type MatchSelection struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// GameMode 游戏模式
type GameMode string

const (
	ModeStandard  GameMode = "standard"   // 标准模式：所有人同时答同一批题
	ModeTurnBased GameMode = "turn-based" // 轮换模式：轮流选分类和题型
)

// RoomSettings 房间设置（字段名与客户端契约一致）
type RoomSettings struct {
	QuestionCount          int            `json:"questionCount"`
	TimePerQuestionSeconds int            `json:"timePerQuestionSeconds"`
	SelectedQuestionTypes  []QuestionType `json:"selectedQuestionTypes,omitempty"`
	TopicScope             []string       `json:"topicScope,omitempty"`
}
