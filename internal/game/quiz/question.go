package quiz

import (
	"math/rand/v2"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// View 生成广播给客户端的题目视图，剥离答案字段。
// 连线题的右列按随机顺序排列，ID 保留原始配对序号。
func View(q *protocol.Question) protocol.QuestionView {
	v := protocol.QuestionView{
		ID:       q.ID,
		Type:     q.Type,
		Category: q.Category,
		Text:     q.Text,
		Points:   q.Points,
		Options:  q.Options,
		Items:    q.Items,
	}

	if q.Type == protocol.TypeMatch {
		v.LeftItems = make([]protocol.PairItem, len(q.Pairs))
		v.RightItems = make([]protocol.PairItem, len(q.Pairs))
		for i, p := range q.Pairs {
			v.LeftItems[i] = protocol.PairItem{ID: i, Text: p.Left}
			v.RightItems[i] = protocol.PairItem{ID: i, Text: p.Right}
		}
		rand.Shuffle(len(v.RightItems), func(i, j int) {
			v.RightItems[i], v.RightItems[j] = v.RightItems[j], v.RightItems[i]
		})
	}

	return v
}

// BasePoints 题目基础分
func BasePoints(q *protocol.Question) int {
	if q.Points > 0 {
		return q.Points
	}
	return 100
}

// CorrectAnswerOf 返回题目的正确答案（用于 round-results 广播）
func CorrectAnswerOf(q *protocol.Question) any {
	switch q.Type {
	case protocol.TypeMultipleChoice, protocol.TypeFillBlank:
		return q.Answer
	case protocol.TypeOrder:
		return q.CorrectOrder
	case protocol.TypeMatch:
		return q.Pairs
	}
	return nil
}
