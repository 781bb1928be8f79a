package room

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"github.com/palemoky/trivia-arena/internal/game/grader"
	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/protocol"
)

// 速度系数下限：压哨答对仍拿一半基础分，错误答案永远是 0，
// 不会出现答错比答慢得分高的情况
const speedFloor = 0.5

// handleStartGame 房主开始游戏。finished 状态下等同于再来一局：
// 清零分数和进度后重新开始。
func (r *Room) handleStartGame(c cmdStartGame) {
	p := r.findPlayer(c.playerID)
	if p == nil {
		return
	}
	if c.playerID != r.hostID {
		r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeNotHost))
		return
	}
	if r.status != StatusLobby && r.status != StatusFinished {
		r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeGameStarted))
		return
	}

	r.resetMatch()

	if r.mode == protocol.ModeTurnBased {
		r.startTurnBased(p)
		return
	}

	// 标准模式：优先使用房主带来的题目，否则从题库按设置抓取。
	// 题目内容不做校验，原样透传。
	questions := c.questions
	if len(questions) == 0 && r.opts.Provider != nil {
		var err error
		questions, err = r.opts.Provider.Bank(
			r.settings.TopicScope, r.settings.SelectedQuestionTypes, r.settings.QuestionCount)
		if err != nil {
			if errors.Is(err, quiz.ErrNoQuestions) {
				r.unicast(p, protocol.MustNewMessage(protocol.MsgNoQuestions, protocol.NoQuestionsPayload{
					Message: "没有符合条件的题目，请调整筛选条件",
				}))
				return // 房间停留在 lobby
			}
			r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeUnknown))
			return
		}
	}
	if len(questions) == 0 {
		r.unicast(p, protocol.MustNewMessage(protocol.MsgNoQuestions, protocol.NoQuestionsPayload{
			Message: "没有可用的题目",
		}))
		return
	}

	r.questions = questions
	r.openRound(protocol.MsgGameStarted)

	log.Printf("🎮 房间 %s 游戏开始，共 %d 题", r.code, len(r.questions))
}

// resetMatch 清零上一局的进度（再来一局时）
func (r *Room) resetMatch() {
	r.questions = nil
	r.current = 0
	r.turnIndex = 0
	r.answers = make(map[string]answerRecord)
	for _, p := range r.players {
		p.Score = 0
		p.HasAnswered = false
	}
}

// openRound 广播当前题目并打开答题窗口
func (r *Room) openRound(msgType protocol.MessageType) {
	q := &r.questions[r.current]

	r.status = StatusInRound
	r.answers = make(map[string]answerRecord)
	for _, p := range r.players {
		p.HasAnswered = false
	}

	window := r.opts.TimePerQuestion
	r.roundOpenedAt = time.Now()
	r.roundDeadline = r.roundOpenedAt.Add(window)

	r.broadcast(protocol.MustNewMessage(msgType, protocol.QuestionPayload{
		Question:       quiz.View(q),
		QuestionIndex:  r.current,
		TotalQuestions: r.totalQuestions(),
		TimeLimit:      int(window.Seconds()),
	}))

	r.scheduleTimer(window)
}

// totalQuestions 本局总题数：标准模式为题目数，轮换模式为总回合数
func (r *Room) totalQuestions() int {
	if r.mode == protocol.ModeTurnBased {
		return r.totalTurns
	}
	return len(r.questions)
}

// handleSubmitAnswer 记录玩家提交。同一玩家的重复提交是幂等空操作，
// 不覆盖也不报错给其他玩家。
func (r *Room) handleSubmitAnswer(c cmdSubmitAnswer) {
	p := r.findPlayer(c.playerID)
	if p == nil {
		return
	}
	if r.status != StatusInRound {
		r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeNotAcceptingAnswers))
		return
	}
	if _, dup := r.answers[c.playerID]; dup {
		return
	}

	r.answers[c.playerID] = answerRecord{raw: c.answer, submittedAt: c.at}
	p.HasAnswered = true

	// 进度只统计在线玩家，掉线者的已交答卷不计入，
	// 避免广播出「2/2 已作答」而本轮仍未收卷的错觉
	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerAnswered, protocol.PlayerAnsweredPayload{
		AnsweredCount: r.connectedAnsweredCount(),
		TotalPlayers:  r.connectedCount(),
	}))

	r.maybeCloseRound()
}

// maybeCloseRound 所有在线玩家都已作答时提前收卷
func (r *Room) maybeCloseRound() {
	if r.status != StatusInRound {
		return
	}

	for _, p := range r.players {
		if p.Connected {
			if _, ok := r.answers[p.ID]; !ok {
				return
			}
		}
	}
	r.closeRound()
}

// closeRound 收卷：判分、排名、广播结果，进入 round_results
func (r *Room) closeRound() {
	r.cancelTimer()

	q := &r.questions[r.current]
	window := r.opts.TimePerQuestion.Seconds()
	base := quiz.BasePoints(q)

	results := make([]protocol.PlayerResult, 0, len(r.players))
	for _, p := range r.players {
		res := protocol.PlayerResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TimeTaken:  window, // 未作答按整个窗口计
		}

		if rec, ok := r.answers[p.ID]; ok {
			taken := rec.submittedAt.Sub(r.roundOpenedAt).Seconds()
			taken = math.Max(0, math.Min(taken, window))
			res.TimeTaken = math.Round(taken*10) / 10

			if grader.Grade(q, rec.raw) {
				res.IsCorrect = true
				res.Points = speedPoints(base, taken, window)
			}
		}

		p.Score += res.Points
		res.TotalScore = p.Score
		results = append(results, res)
	}

	// 按得分降序、用时升序排名，余下按加入顺序保证确定性
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Points != results[j].Points {
			return results[i].Points > results[j].Points
		}
		return results[i].TimeTaken < results[j].TimeTaken
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	r.status = StatusRoundResults
	correct, _ := json.Marshal(quiz.CorrectAnswerOf(q))
	r.broadcast(protocol.MustNewMessage(protocol.MsgRoundResults, protocol.RoundResultsPayload{
		Results:       results,
		CorrectAnswer: correct,
	}))

	if r.hasNextRound() {
		r.scheduleTimer(r.opts.ResultsInterval)
	} else {
		r.finishGame()
	}
}

// speedPoints 速度得分：从开题时的 1.0 线性衰减到窗口结束时的下限
func speedPoints(base int, taken, window float64) int {
	if window <= 0 {
		return base
	}
	factor := 1.0 - (1.0-speedFloor)*(taken/window)
	if factor < speedFloor {
		factor = speedFloor
	}
	return int(math.Round(float64(base) * factor))
}

// hasNextRound 是否还有下一轮
func (r *Room) hasNextRound() bool {
	if r.mode == protocol.ModeTurnBased {
		return r.turnIndex+1 < r.totalTurns
	}
	return r.current+1 < len(r.questions)
}

// handleNextRound 房主跳过结果展示，立即进入下一题
func (r *Room) handleNextRound(playerID string) {
	p := r.findPlayer(playerID)
	if p == nil {
		return
	}
	if playerID != r.hostID {
		r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeNotHost))
		return
	}
	if r.status != StatusRoundResults {
		r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeGameNotStart))
		return
	}

	r.advance()
}

// advance 进入下一轮：标准模式广播下一题，轮换模式开始下一回合
func (r *Room) advance() {
	if r.status != StatusRoundResults {
		return
	}

	if r.mode == protocol.ModeTurnBased {
		r.turnIndex++
		r.current++
		r.startTurn()
		return
	}

	r.current++
	if r.current >= len(r.questions) {
		r.finishGame()
		return
	}
	r.openRound(protocol.MsgQuestion)
}

// finishGame 结束本局：广播最终排名和获胜者。
// 平分时按加入顺序取先达到者，保证结果确定。
func (r *Room) finishGame() {
	r.cancelTimer()
	r.status = StatusFinished

	standings := r.playersInfo()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	var winner protocol.PlayerInfo
	if len(standings) > 0 {
		winner = standings[0]
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		FinalResults: standings,
		Winner:       winner,
	}))

	log.Printf("🏁 房间 %s 游戏结束，获胜者 %s (%d 分)", r.code, winner.Name, winner.Score)
}
