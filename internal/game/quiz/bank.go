package quiz

import "github.com/palemoky/trivia-arena/internal/protocol"

// DefaultProvider 返回内置示例题库，本地运行和调试客户端使用。
// 生产部署应接入外部题库服务。
func DefaultProvider() *MemoryProvider {
	categories := []Category{
		{ID: "geography", Name: "地理"},
		{ID: "science", Name: "科学"},
		{ID: "history", Name: "历史"},
	}

	questions := []protocol.Question{
		{
			ID: "geo-1", Type: protocol.TypeMultipleChoice, Category: "geography",
			Text:    "世界上面积最大的国家是？",
			Options: []string{"加拿大", "中国", "俄罗斯", "美国"},
			Answer:  "俄罗斯",
		},
		{
			ID: "geo-2", Type: protocol.TypeFillBlank, Category: "geography",
			Text:   "法国的首都是____。",
			Answer: "巴黎",
		},
		{
			ID: "geo-3", Type: protocol.TypeMatch, Category: "geography",
			Text: "请将国家与首都配对",
			Pairs: []protocol.MatchPair{
				{Left: "日本", Right: "东京"},
				{Left: "英国", Right: "伦敦"},
				{Left: "埃及", Right: "开罗"},
			},
		},
		{
			ID: "sci-1", Type: protocol.TypeMultipleChoice, Category: "science",
			Text:    "水的化学式是？",
			Options: []string{"CO2", "H2O", "NaCl", "O2"},
			Answer:  "H2O",
		},
		{
			ID: "sci-2", Type: protocol.TypeOrder, Category: "science",
			Text: "请按离太阳由近到远排列",
			Items: []protocol.OrderItem{
				{ID: 1, Text: "地球"},
				{ID: 2, Text: "水星"},
				{ID: 3, Text: "火星"},
				{ID: 4, Text: "金星"},
			},
			CorrectOrder: []int{2, 4, 1, 3},
		},
		{
			ID: "sci-3", Type: protocol.TypeFillBlank, Category: "science",
			Text:   "光在真空中的速度约为每秒30万____。",
			Answer: "千米",
		},
		{
			ID: "his-1", Type: protocol.TypeMultipleChoice, Category: "history",
			Text:    "第二次世界大战结束于哪一年？",
			Options: []string{"1943", "1944", "1945", "1946"},
			Answer:  "1945",
		},
		{
			ID: "his-2", Type: protocol.TypeOrder, Category: "history",
			Text: "请按时间先后排列以下朝代",
			Items: []protocol.OrderItem{
				{ID: 1, Text: "唐"},
				{ID: 2, Text: "汉"},
				{ID: 3, Text: "清"},
				{ID: 4, Text: "宋"},
			},
			CorrectOrder: []int{2, 1, 4, 3},
		},
	}

	return NewMemoryProvider(categories, questions)
}
