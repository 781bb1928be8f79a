package grader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestGrade_MultipleChoice(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{
		Type:    protocol.TypeMultipleChoice,
		Options: []string{"Paris", "London", "Berlin"},
		Answer:  "Paris",
	}

	assert.True(t, Grade(q, raw(t, "Paris")))
	assert.False(t, Grade(q, raw(t, "London")))
	// Exact match only, no case folding for choices
	assert.False(t, Grade(q, raw(t, "paris")))
	// Malformed payload is just wrong
	assert.False(t, Grade(q, json.RawMessage(`{not json`)))
}

func TestGrade_FillBlank_CaseAndWhitespace(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{
		Type:   protocol.TypeFillBlank,
		Answer: "Mississippi",
	}

	assert.True(t, Grade(q, raw(t, "Mississippi")))
	assert.True(t, Grade(q, raw(t, "  mississippi  ")))
	assert.True(t, Grade(q, raw(t, "MISSISSIPPI")))
}

func TestGrade_FillBlank_Typo(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{
		Type:   protocol.TypeFillBlank,
		Answer: "Mississippi", // 11 runes, tolerance = 3
	}

	// One missing letter
	assert.True(t, Grade(q, raw(t, "Missisippi")))
	// Way off
	assert.False(t, Grade(q, raw(t, "Amazon")))
}

func TestGrade_FillBlank_ShortAnswerExactOnly(t *testing.T) {
	t.Parallel()

	// 2 runes → tolerance 0, only an exact match counts
	q := &protocol.Question{
		Type:   protocol.TypeFillBlank,
		Answer: "Go",
	}

	assert.True(t, Grade(q, raw(t, "go")))
	assert.False(t, Grade(q, raw(t, "g")))
	assert.False(t, Grade(q, raw(t, "got")))
}

func TestGrade_Order(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{
		Type:         protocol.TypeOrder,
		Items:        []protocol.OrderItem{{ID: 0}, {ID: 1}, {ID: 2}},
		CorrectOrder: []int{2, 0, 1},
	}

	assert.True(t, Grade(q, raw(t, []int{2, 0, 1})))
	assert.False(t, Grade(q, raw(t, []int{0, 1, 2})))
	// Partial submission never matches
	assert.False(t, Grade(q, raw(t, []int{2, 0})))
	assert.False(t, Grade(q, raw(t, []int{2, 0, 1, 1})))
}

func TestGrade_Match(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{
		Type: protocol.TypeMatch,
		Pairs: []protocol.MatchPair{
			{Left: "France", Right: "Paris"},
			{Left: "Japan", Right: "Tokyo"},
			{Left: "Egypt", Right: "Cairo"},
		},
	}

	// Left and right IDs both reference the original pair index,
	// so a correct submission pairs equal IDs regardless of display order
	correct := []protocol.MatchSelection{{Left: 2, Right: 2}, {Left: 0, Right: 0}, {Left: 1, Right: 1}}
	assert.True(t, Grade(q, raw(t, correct)))

	crossed := []protocol.MatchSelection{{Left: 0, Right: 1}, {Left: 1, Right: 0}, {Left: 2, Right: 2}}
	assert.False(t, Grade(q, raw(t, crossed)))

	// Duplicate pairings rejected even if IDs match
	dup := []protocol.MatchSelection{{Left: 0, Right: 0}, {Left: 0, Right: 0}, {Left: 1, Right: 1}}
	assert.False(t, Grade(q, raw(t, dup)))

	// Out-of-range index
	oob := []protocol.MatchSelection{{Left: 0, Right: 0}, {Left: 1, Right: 1}, {Left: 5, Right: 5}}
	assert.False(t, Grade(q, raw(t, oob)))

	// Incomplete set
	short := []protocol.MatchSelection{{Left: 0, Right: 0}}
	assert.False(t, Grade(q, raw(t, short)))
}

func TestGrade_UnknownTypeIsWrong(t *testing.T) {
	t.Parallel()

	q := &protocol.Question{Type: "essay", Answer: "anything"}
	assert.False(t, Grade(q, raw(t, "anything")))
}
