package room

import (
	"errors"
	"log"
	"math/rand/v2"
	"slices"

	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/protocol"
)

// startTurnBased 轮换模式开局：回合数取设置的题目数量
func (r *Room) startTurnBased(host *Player) {
	if r.opts.Provider == nil {
		r.unicast(host, protocol.NewErrorMessage(protocol.ErrCodeNoQuestions))
		return
	}

	r.availableCategories = r.opts.Provider.Categories(r.settings.TopicScope)
	if len(r.availableCategories) == 0 {
		r.unicast(host, protocol.MustNewMessage(protocol.MsgNoQuestions, protocol.NoQuestionsPayload{
			Message: "没有符合条件的题目分类",
		}))
		return // 房间停留在 lobby
	}

	r.totalTurns = r.settings.QuestionCount
	if r.totalTurns <= 0 {
		r.totalTurns = len(r.players)
	}

	log.Printf("🎮 房间 %s 轮换模式开始，共 %d 回合", r.code, r.totalTurns)
	r.startTurn()
}

// startTurn 开始一个回合：指定本回合的分类选择人和题型选择人。
// 两个角色逐回合轮转，保证每名玩家的选择次数大致均等；
// 掉线玩家不让出顺位，由超时代选兜底。
func (r *Room) startTurn() {
	n := len(r.players)
	if n == 0 {
		return
	}

	r.categorySelectorID = r.players[r.turnIndex%n].ID
	r.typeSelectorID = r.players[(r.turnIndex+1)%n].ID
	r.selectedCategory = ""
	r.status = StatusSelectingCategory

	ids := make([]string, len(r.availableCategories))
	for i, c := range r.availableCategories {
		ids[i] = c.ID
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgTurnStart, protocol.TurnStartPayload{
		TurnIndex:            r.turnIndex,
		TotalTurns:           r.totalTurns,
		CategorySelectorID:   r.categorySelectorID,
		TypeSelectorID:       r.typeSelectorID,
		AvailableCategoryIDs: ids,
		SelectionTimeout:     int(r.opts.SelectionTimeout.Seconds()),
	}))

	r.scheduleTimer(r.opts.SelectionTimeout)
}

// handleSelectCategory 分类选择。只接受指定选择人的提交；
// auto 为超时或选择人退出时的服务端代选。
func (r *Room) handleSelectCategory(c cmdSelectCategory) {
	if r.status != StatusSelectingCategory {
		if p := r.findPlayer(c.playerID); p != nil && !c.auto {
			r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeNotYourTurn))
		}
		return
	}
	if !c.auto && c.playerID != r.categorySelectorID {
		r.unicast(r.findPlayer(c.playerID), protocol.NewErrorMessage(protocol.ErrCodeNotYourTurn))
		return
	}

	valid := slices.ContainsFunc(r.availableCategories, func(cat quiz.Category) bool {
		return cat.ID == c.categoryID
	})
	if !valid {
		r.unicast(r.findPlayer(c.playerID), protocol.NewErrorMessage(protocol.ErrCodeInvalidSelection))
		return
	}

	r.cancelTimer()
	r.selectedCategory = c.categoryID
	r.status = StatusSelectingType

	r.broadcast(protocol.MustNewMessage(protocol.MsgCategorySelected, protocol.CategorySelectedPayload{
		CategoryID: c.categoryID,
		NextPhase:  string(StatusSelectingType),
		AutoPicked: c.auto,
	}))

	r.scheduleTimer(r.opts.SelectionTimeout)
}

// handleSelectType 题型选择。选定后立即生成题目并开题。
func (r *Room) handleSelectType(c cmdSelectType) {
	if r.status != StatusSelectingType {
		if p := r.findPlayer(c.playerID); p != nil && !c.auto {
			r.unicast(p, protocol.NewErrorMessage(protocol.ErrCodeNotYourTurn))
		}
		return
	}
	if !c.auto && c.playerID != r.typeSelectorID {
		r.unicast(r.findPlayer(c.playerID), protocol.NewErrorMessage(protocol.ErrCodeNotYourTurn))
		return
	}
	if !slices.Contains(r.allowedTypes(), c.typeID) {
		r.unicast(r.findPlayer(c.playerID), protocol.NewErrorMessage(protocol.ErrCodeInvalidSelection))
		return
	}

	r.cancelTimer()

	r.broadcast(protocol.MustNewMessage(protocol.MsgTypeSelected, protocol.TypeSelectedPayload{
		TypeID:     c.typeID,
		AutoPicked: c.auto,
	}))

	r.generateQuestion(c.typeID)
}

// allowedTypes 本房间允许的题型集合，未设置则全部四种
func (r *Room) allowedTypes() []protocol.QuestionType {
	if len(r.settings.SelectedQuestionTypes) > 0 {
		return r.settings.SelectedQuestionTypes
	}
	return []protocol.QuestionType{
		protocol.TypeMultipleChoice, protocol.TypeFillBlank,
		protocol.TypeOrder, protocol.TypeMatch,
	}
}

// autoSelectCategory 选择超时：在合法分类中均匀随机代选
func (r *Room) autoSelectCategory() {
	if len(r.availableCategories) == 0 {
		return
	}
	pick := r.availableCategories[rand.IntN(len(r.availableCategories))]
	log.Printf("⏰ 房间 %s 分类选择超时，代选 %s", r.code, pick.ID)
	r.handleSelectCategory(cmdSelectCategory{playerID: r.categorySelectorID, categoryID: pick.ID, auto: true})
}

// autoSelectType 题型选择超时：在允许的题型中均匀随机代选
func (r *Room) autoSelectType() {
	allowed := r.allowedTypes()
	pick := allowed[rand.IntN(len(allowed))]
	log.Printf("⏰ 房间 %s 题型选择超时，代选 %s", r.code, pick)
	r.handleSelectType(cmdSelectType{playerID: r.typeSelectorID, typeID: pick, auto: true})
}

// generateQuestion 按选定的分类和题型取题并开题。
// 精确匹配落空时先放宽题型、再放宽分类；题库彻底为空时
// 广播 no-questions 并结束本局，而不是让房间卡死。
func (r *Room) generateQuestion(qt protocol.QuestionType) {
	q, err := r.opts.Provider.Pick(r.selectedCategory, qt)
	if errors.Is(err, quiz.ErrNoQuestions) {
		q, err = r.opts.Provider.Pick(r.selectedCategory, "")
	}
	if errors.Is(err, quiz.ErrNoQuestions) {
		q, err = r.opts.Provider.Pick("", "")
	}
	if err != nil {
		r.broadcast(protocol.MustNewMessage(protocol.MsgNoQuestions, protocol.NoQuestionsPayload{
			Message: "题库中没有可用的题目",
		}))
		r.finishGame()
		return
	}

	r.questions = append(r.questions, *q)
	r.current = len(r.questions) - 1
	r.openRound(protocol.MsgQuestionGenerated)
}
