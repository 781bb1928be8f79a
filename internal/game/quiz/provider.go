package quiz

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// ErrNoQuestions 题库中没有符合条件的题目
var ErrNoQuestions = errors.New("没有符合条件的题目")

// Category 题目分类
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider 题目内容提供方。题目内容本身由外部系统维护，
// 协调器只依赖本接口获取题目，不校验题目内容。
type Provider interface {
	// Categories 返回可用分类，scope 非空时仅返回其中的分类
	Categories(scope []string) []Category
	// Pick 按分类和题型随机取一题，无匹配时返回 ErrNoQuestions
	Pick(categoryID string, qt protocol.QuestionType) (*protocol.Question, error)
	// Bank 按过滤条件批量取题（标准模式房主未带题时使用）
	Bank(topics []string, types []protocol.QuestionType, n int) ([]protocol.Question, error)
}

// MemoryProvider 内存题库，用于本地运行和测试
type MemoryProvider struct {
	mu         sync.RWMutex
	categories []Category
	questions  []protocol.Question
}

// NewMemoryProvider 创建内存题库
func NewMemoryProvider(categories []Category, questions []protocol.Question) *MemoryProvider {
	return &MemoryProvider{categories: categories, questions: questions}
}

// Categories 返回可用分类
func (p *MemoryProvider) Categories(scope []string) []Category {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(scope) == 0 {
		return slices.Clone(p.categories)
	}

	var out []Category
	for _, c := range p.categories {
		if slices.Contains(scope, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Pick 按分类和题型随机取一题
func (p *MemoryProvider) Pick(categoryID string, qt protocol.QuestionType) (*protocol.Question, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var candidates []int
	for i, q := range p.questions {
		if categoryID != "" && q.Category != categoryID {
			continue
		}
		if qt != "" && q.Type != qt {
			continue
		}
		candidates = append(candidates, i)
	}

	if len(candidates) == 0 {
		return nil, ErrNoQuestions
	}

	q := p.questions[candidates[rand.IntN(len(candidates))]]
	return &q, nil
}

// Bank 按过滤条件批量取题，顺序随机
func (p *MemoryProvider) Bank(topics []string, types []protocol.QuestionType, n int) ([]protocol.Question, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []protocol.Question
	for _, q := range p.questions {
		if len(topics) > 0 && !slices.Contains(topics, q.Category) {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, q.Type) {
			continue
		}
		out = append(out, q)
	}

	if len(out) == 0 {
		return nil, ErrNoQuestions
	}

	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
