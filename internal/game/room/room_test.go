package room

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/trivia-arena/internal/protocol"
	"github.com/palemoky/trivia-arena/internal/testutil"
)

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

func testQuestions() []protocol.Question {
	return []protocol.Question{
		{ID: "q1", Type: protocol.TypeMultipleChoice, Text: "1+1?", Options: []string{"1", "2"}, Answer: "2"},
		{ID: "q2", Type: protocol.TypeFillBlank, Text: "Capital of France?", Answer: "Paris"},
	}
}

func newTestRoom(t *testing.T, opts Options) *Room {
	t.Helper()
	if opts.Code == "" {
		opts.Code = "TEST01"
	}
	if opts.Mode == "" {
		opts.Mode = protocol.ModeStandard
	}
	if opts.TimePerQuestion == 0 {
		opts.TimePerQuestion = 30 * time.Second
	}
	if opts.SelectionTimeout == 0 {
		opts.SelectionTimeout = 30 * time.Second
	}
	if opts.ResultsInterval == 0 {
		opts.ResultsInterval = 30 * time.Second
	}

	r := New(opts)
	t.Cleanup(r.Stop)
	return r
}

// waitFor 等待客户端收到指定类型的消息
func waitFor(t *testing.T, c *testutil.SimpleClient, mt protocol.MessageType) *protocol.Message {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.HasMessage(mt)
	}, waitTimeout, waitTick, "expected message %s", mt)
	return c.LastOfType(mt)
}

func parsePayload[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	p, err := protocol.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func rawAnswer(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestJoin_HostAndSecondPlayer(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	created := parsePayload[protocol.RoomCreatedPayload](t, waitFor(t, host, protocol.MsgRoomCreated))
	assert.Equal(t, "TEST01", created.RoomCode)
	assert.True(t, created.IsHost)
	assert.Equal(t, "TEST01", host.GetRoom())

	r.Join(p2, false)
	joined := parsePayload[protocol.RoomJoinedPayload](t, waitFor(t, p2, protocol.MsgRoomJoined))
	assert.False(t, joined.IsHost)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "Alice", joined.Players[0].Name)

	// Existing players are notified, the joiner is not
	waitFor(t, host, protocol.MsgPlayerJoined)
	assert.False(t, p2.HasMessage(protocol.MsgPlayerJoined))
}

func TestJoin_RoomFull(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{MaxPlayers: 2})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")
	p3 := testutil.NewSimpleClient("p3", "Carol")

	r.Join(host, true)
	r.Join(p2, false)
	r.Join(p3, false)

	msg := waitFor(t, p3, protocol.MsgJoinError)
	payload := parsePayload[protocol.JoinErrorPayload](t, msg)
	assert.Contains(t, payload.Message, "已满")
	assert.Empty(t, p3.GetRoom())
}

func TestJoin_RejectedAfterGameStart(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	late := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	r.Join(late, false)
	waitFor(t, late, protocol.MsgJoinError)
}

func TestStartGame_OnlyHost(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p2", testQuestions())
	msg := waitFor(t, p2, protocol.MsgError)
	payload := parsePayload[protocol.ErrorPayload](t, msg)
	assert.Equal(t, protocol.ErrCodeNotHost, payload.Code)
	assert.False(t, host.HasMessage(protocol.MsgGameStarted))
}

func TestStandardGame_FullMatch(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())

	started := parsePayload[protocol.QuestionPayload](t, waitFor(t, host, protocol.MsgGameStarted))
	assert.Equal(t, 0, started.QuestionIndex)
	assert.Equal(t, 2, started.TotalQuestions)
	assert.Equal(t, "1+1?", started.Question.Text)
	waitFor(t, p2, protocol.MsgGameStarted)

	// Round 1: host answers right, p2 answers wrong. The round closes
	// early once every connected player has answered.
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	waitFor(t, p2, protocol.MsgPlayerAnswered)
	r.SubmitAnswer("p2", rawAnswer(t, "1"))

	results := parsePayload[protocol.RoundResultsPayload](t, waitFor(t, host, protocol.MsgRoundResults))
	require.Len(t, results.Results, 2)
	assert.Equal(t, "p1", results.Results[0].PlayerID)
	assert.Equal(t, 1, results.Results[0].Rank)
	assert.True(t, results.Results[0].IsCorrect)
	assert.Positive(t, results.Results[0].Points)
	assert.False(t, results.Results[1].IsCorrect)
	assert.Zero(t, results.Results[1].Points)

	var correct string
	require.NoError(t, json.Unmarshal(results.CorrectAnswer, &correct))
	assert.Equal(t, "2", correct)

	// Host advances early instead of waiting out the results interval
	r.NextRound("p1")
	q2 := parsePayload[protocol.QuestionPayload](t, waitFor(t, host, protocol.MsgQuestion))
	assert.Equal(t, 1, q2.QuestionIndex)

	// Round 2: only p2 answers right
	r.SubmitAnswer("p1", rawAnswer(t, "London"))
	r.SubmitAnswer("p2", rawAnswer(t, "Paris"))

	over := parsePayload[protocol.GameOverPayload](t, waitFor(t, host, protocol.MsgGameOver))
	require.Len(t, over.FinalResults, 2)
	assert.Equal(t, over.FinalResults[0].ID, over.Winner.ID)
	assert.GreaterOrEqual(t, over.FinalResults[0].Score, over.FinalResults[1].Score)
	waitFor(t, p2, protocol.MsgGameOver)
}

func TestSubmitAnswer_DuplicateIgnored(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	// First submission is wrong, the second (correct) must not override it
	r.SubmitAnswer("p1", rawAnswer(t, "1"))
	waitFor(t, host, protocol.MsgPlayerAnswered)
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	r.SubmitAnswer("p2", rawAnswer(t, "1"))

	results := parsePayload[protocol.RoundResultsPayload](t, waitFor(t, host, protocol.MsgRoundResults))
	for _, res := range results.Results {
		if res.PlayerID == "p1" {
			assert.False(t, res.IsCorrect)
		}
	}
}

func TestSubmitAnswer_OutsideRound(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	msg := waitFor(t, host, protocol.MsgError)
	payload := parsePayload[protocol.ErrorPayload](t, msg)
	assert.Equal(t, protocol.ErrCodeNotAcceptingAnswers, payload.Code)
}

func TestRoundTimeout_ClosesWithNoAnswers(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{TimePerQuestion: 50 * time.Millisecond})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	results := parsePayload[protocol.RoundResultsPayload](t, waitFor(t, host, protocol.MsgRoundResults))
	require.Len(t, results.Results, 1)
	assert.False(t, results.Results[0].IsCorrect)
	assert.Zero(t, results.Results[0].Points)
}

func TestResultsInterval_AutoAdvances(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{ResultsInterval: 50 * time.Millisecond})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgRoundResults)

	// Next question arrives without any next-round request
	waitFor(t, host, protocol.MsgQuestion)
}

func TestHostMigration_OnDisconnect(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.Disconnect("p1")

	msg := waitFor(t, p2, protocol.MsgHostChanged)
	payload := parsePayload[protocol.HostChangedPayload](t, msg)
	assert.Equal(t, "p2", payload.HostID)

	// Offline notice reaches the remaining player
	waitFor(t, p2, protocol.MsgPlayerOffline)

	// New host can start the game
	r.StartGame("p2", testQuestions())
	waitFor(t, p2, protocol.MsgGameStarted)
}

func TestReconnect_KeepsScoreAndRoster(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, p2, protocol.MsgGameStarted)
	r.SubmitAnswer("p2", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgPlayerAnswered)

	r.Disconnect("p2")
	waitFor(t, host, protocol.MsgPlayerOffline)

	fresh := testutil.NewSimpleClient("p2", "Bob")
	r.Reconnect("p2", fresh)
	waitFor(t, host, protocol.MsgPlayerOnline)
	require.Eventually(t, func() bool {
		return fresh.GetRoom() == "TEST01"
	}, waitTimeout, waitTick)

	// Roster still has both players and p2 kept the answered mark
	require.Eventually(t, func() bool {
		return r.Info().ConnectedCount == 2
	}, waitTimeout, waitTick)
}

func TestPlayerAnswered_CountsOnlyConnected(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")
	p3 := testutil.NewSimpleClient("p3", "Carol")

	r.Join(host, true)
	r.Join(p2, false)
	r.Join(p3, false)
	waitFor(t, p3, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	r.SubmitAnswer("p2", rawAnswer(t, "2"))
	first := parsePayload[protocol.PlayerAnsweredPayload](t, waitFor(t, host, protocol.MsgPlayerAnswered))
	assert.Equal(t, 1, first.AnsweredCount)
	assert.Equal(t, 3, first.TotalPlayers)

	// An answered player dropping must not inflate the progress: the
	// round is still waiting on p1, so "2 of 2" would be a lie
	r.Disconnect("p2")
	waitFor(t, host, protocol.MsgPlayerOffline)

	r.SubmitAnswer("p3", rawAnswer(t, "2"))
	require.Eventually(t, func() bool {
		msg := host.LastOfType(protocol.MsgPlayerAnswered)
		p, err := protocol.ParsePayload[protocol.PlayerAnsweredPayload](msg)
		return err == nil && p.TotalPlayers == 2
	}, waitTimeout, waitTick)

	progress := parsePayload[protocol.PlayerAnsweredPayload](t, host.LastOfType(protocol.MsgPlayerAnswered))
	assert.Equal(t, 1, progress.AnsweredCount)
	assert.Equal(t, 2, progress.TotalPlayers)
	assert.False(t, host.HasMessage(protocol.MsgRoundResults))

	// p1 answering completes the connected set and closes the round
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgRoundResults)
}

func TestReconnect_MidRoundResync(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, p2, protocol.MsgGameStarted)

	r.Disconnect("p2")
	waitFor(t, host, protocol.MsgPlayerOffline)

	// The fresh connection gets the roster and the open question back,
	// instead of waiting blind for the next broadcast
	fresh := testutil.NewSimpleClient("p2", "Bob")
	r.Reconnect("p2", fresh)

	roster := parsePayload[protocol.RoomJoinedPayload](t, waitFor(t, fresh, protocol.MsgRoomJoined))
	assert.Equal(t, "TEST01", roster.RoomCode)
	assert.False(t, roster.IsHost)
	require.Len(t, roster.Players, 2)

	q := parsePayload[protocol.QuestionPayload](t, waitFor(t, fresh, protocol.MsgQuestion))
	assert.Equal(t, 0, q.QuestionIndex)
	assert.Equal(t, "q1", q.Question.ID)
	assert.Greater(t, q.TimeLimit, 0)
	assert.LessOrEqual(t, q.TimeLimit, 30)

	// The resynced player can still answer the round
	r.SubmitAnswer("p2", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgPlayerAnswered)
}

func TestHostMigration_MidRound(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, p2, protocol.MsgGameStarted)

	// Host drops with the round open: the crown moves immediately
	r.Disconnect("p1")
	migrated := parsePayload[protocol.HostChangedPayload](t, waitFor(t, p2, protocol.MsgHostChanged))
	assert.Equal(t, "p2", migrated.HostID)

	// Only connected players are awaited, so p2 answering closes the round
	r.SubmitAnswer("p2", rawAnswer(t, "2"))
	waitFor(t, p2, protocol.MsgRoundResults)

	// The migrated host drives the match forward
	r.NextRound("p2")
	msg := waitFor(t, p2, protocol.MsgQuestion)
	q := parsePayload[protocol.QuestionPayload](t, msg)
	assert.Equal(t, 1, q.QuestionIndex)
}

func TestDisconnect_AllAnsweredClosesRound(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")

	r.Join(host, true)
	r.Join(p2, false)
	waitFor(t, p2, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions())
	waitFor(t, host, protocol.MsgGameStarted)

	// Host answers; the round is only waiting on p2, whose disconnect
	// must not stall the room
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgPlayerAnswered)
	r.Disconnect("p2")

	waitFor(t, host, protocol.MsgRoundResults)
}

func TestLeave_LastPlayerDestroysRoom(t *testing.T) {
	t.Parallel()

	destroyed := make(chan string, 1)
	r := newTestRoom(t, Options{OnEmpty: func(code string) { destroyed <- code }})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	r.Leave("p1")

	select {
	case code := <-destroyed:
		assert.Equal(t, "TEST01", code)
	case <-time.After(waitTimeout):
		t.Fatal("OnEmpty was not called")
	}
	assert.Empty(t, host.GetRoom())
}

func TestRematch_AfterGameOver(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	// Single-question match ends immediately after the round
	r.StartGame("p1", testQuestions()[:1])
	waitFor(t, host, protocol.MsgGameStarted)
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	waitFor(t, host, protocol.MsgGameOver)

	// start-game from finished acts as a rematch with reset scores
	host.Reset()
	r.StartGame("p1", testQuestions())
	started := parsePayload[protocol.QuestionPayload](t, waitFor(t, host, protocol.MsgGameStarted))
	assert.Equal(t, 0, started.QuestionIndex)

	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	results := parsePayload[protocol.RoundResultsPayload](t, waitFor(t, host, protocol.MsgRoundResults))
	assert.Equal(t, results.Results[0].Points, results.Results[0].TotalScore)
}

func TestStartGame_NoQuestionsStaysInLobby(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")

	r.Join(host, true)
	waitFor(t, host, protocol.MsgRoomCreated)

	// No questions supplied and no provider configured
	r.StartGame("p1", nil)
	waitFor(t, host, protocol.MsgNoQuestions)

	require.Eventually(t, func() bool {
		return r.Info().Status == StatusLobby
	}, waitTimeout, waitTick)
}

func TestSpeedPoints(t *testing.T) {
	t.Parallel()

	// Instant answer earns full base points
	assert.Equal(t, 100, speedPoints(100, 0, 30))
	// Halfway through the window: factor 0.75
	assert.Equal(t, 75, speedPoints(100, 15, 30))
	// Buzzer beater still earns the floor
	assert.Equal(t, 50, speedPoints(100, 30, 30))
	// Degenerate window falls back to base
	assert.Equal(t, 100, speedPoints(100, 1, 0))
}

func TestCloseRound_Tiebreaks(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, Options{})
	host := testutil.NewSimpleClient("p1", "Alice")
	p2 := testutil.NewSimpleClient("p2", "Bob")
	p3 := testutil.NewSimpleClient("p3", "Carol")

	r.Join(host, true)
	r.Join(p2, false)
	r.Join(p3, false)
	waitFor(t, p3, protocol.MsgRoomJoined)

	r.StartGame("p1", testQuestions()[:1])
	waitFor(t, p3, protocol.MsgGameStarted)

	// p2 answers right first, then host; p3 wrong
	r.SubmitAnswer("p2", rawAnswer(t, "2"))
	r.SubmitAnswer("p1", rawAnswer(t, "2"))
	r.SubmitAnswer("p3", rawAnswer(t, "1"))

	results := parsePayload[protocol.RoundResultsPayload](t, waitFor(t, host, protocol.MsgRoundResults))
	require.Len(t, results.Results, 3)

	// Correct answers rank ahead of the wrong one; the wrong answer is last
	assert.Equal(t, "p3", results.Results[2].PlayerID)
	assert.True(t, results.Results[0].IsCorrect)
	assert.True(t, results.Results[1].IsCorrect)
	for i, res := range results.Results {
		assert.Equal(t, i+1, res.Rank)
	}
}
