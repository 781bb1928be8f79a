package protocol

// 错误码
const (
	ErrCodeUnknown      = 1000
	ErrCodeInvalidMsg   = 1001
	ErrCodeRateLimit    = 1002
	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeGameStarted  = 2004 // 游戏已开始，无法加入
	ErrCodeNotHost      = 2005 // 非房主操作

	ErrCodeGameNotStart        = 3001
	ErrCodeNotAcceptingAnswers = 3002 // 当前不在答题阶段
	ErrCodeNotYourTurn         = 3003 // 不是你的选择回合
	ErrCodeInvalidSelection    = 3004 // 非法的分类/题型
	ErrCodeNoQuestions         = 3005 // 无符合条件的题目
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeRateLimit:           "请求过于频繁",
	ErrCodeRoomNotFound:        "房间不存在",
	ErrCodeRoomFull:            "房间已满",
	ErrCodeNotInRoom:           "您不在房间中",
	ErrCodeGameStarted:         "游戏已开始",
	ErrCodeNotHost:             "只有房主可以执行此操作",
	ErrCodeGameNotStart:        "游戏尚未开始",
	ErrCodeNotAcceptingAnswers: "当前不在答题阶段",
	ErrCodeNotYourTurn:         "还没轮到您选择",
	ErrCodeInvalidSelection:    "无效的选择",
	ErrCodeNoQuestions:         "没有符合条件的题目",
}
