package grader

import (
	"encoding/json"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// 填空题允许的最大编辑距离
const maxEditDistance = 3

// Grade 判定提交的答案是否正确。纯函数，answer 为客户端原始提交，
// 按题型解析；解析失败一律判错，不影响房间状态。
func Grade(q *protocol.Question, answer json.RawMessage) bool {
	switch q.Type {
	case protocol.TypeMultipleChoice:
		return gradeMultipleChoice(q, answer)
	case protocol.TypeFillBlank:
		return gradeFillBlank(q, answer)
	case protocol.TypeOrder:
		return gradeOrder(q, answer)
	case protocol.TypeMatch:
		return gradeMatch(q, answer)
	}
	return false
}

// gradeMultipleChoice 单选题：与标准答案完全相等
func gradeMultipleChoice(q *protocol.Question, answer json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(answer, &s); err != nil {
		return false
	}
	return s == q.Answer
}

// gradeFillBlank 填空题：忽略大小写和首尾空白，编辑距离在容差内即判对。
// 容差同时受答案长度约束，避免短答案被 3 个编辑距离轻易命中。
func gradeFillBlank(q *protocol.Question, answer json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(answer, &s); err != nil {
		return false
	}

	got := strings.ToLower(strings.TrimSpace(s))
	want := strings.ToLower(strings.TrimSpace(q.Answer))
	if got == want {
		return true
	}

	tolerance := min(maxEditDistance, len([]rune(want))/3)
	if tolerance == 0 {
		return false
	}
	return levenshtein.ComputeDistance(got, want) <= tolerance
}

// gradeOrder 排序题：提交的 id 序列与正确顺序完全一致
func gradeOrder(q *protocol.Question, answer json.RawMessage) bool {
	var ids []int
	if err := json.Unmarshal(answer, &ids); err != nil {
		return false
	}

	if len(ids) != len(q.CorrectOrder) {
		return false
	}
	for i, id := range ids {
		if id != q.CorrectOrder[i] {
			return false
		}
	}
	return true
}

// gradeMatch 连线题：配对数量一致，且每条连线左右均指向同一原始配对序号
func gradeMatch(q *protocol.Question, answer json.RawMessage) bool {
	var sels []protocol.MatchSelection
	if err := json.Unmarshal(answer, &sels); err != nil {
		return false
	}

	if len(sels) != len(q.Pairs) {
		return false
	}

	seen := make(map[int]bool, len(sels))
	for _, sel := range sels {
		if sel.Left != sel.Right {
			return false
		}
		if sel.Left < 0 || sel.Left >= len(q.Pairs) || seen[sel.Left] {
			return false
		}
		seen[sel.Left] = true
	}
	return true
}
