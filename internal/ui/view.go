package ui

import (
	"fmt"
	"strings"

	"github.com/palemoky/trivia-arena/internal/protocol"
)

// View 渲染当前界面
func (m *OnlineModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle("🎮 答题竞技场"))
	b.WriteString("\n\n")

	switch m.phase {
	case PhaseConnecting:
		b.WriteString("正在连接服务器...")

	case PhaseName:
		b.WriteString("请输入昵称:\n")
		b.WriteString(m.input.View())

	case PhaseLobby:
		b.WriteString(fmt.Sprintf("你好, %s!\n\n", m.playerName))
		b.WriteString("[c] 创建标准模式房间\n")
		b.WriteString("[t] 创建轮换模式房间\n")
		b.WriteString("[j] 加入房间\n")
		b.WriteString("[q] 退出\n")

	case PhaseJoinInput:
		b.WriteString("请输入房间号 (Esc 返回):\n")
		b.WriteString(m.input.View())

	case PhaseWaiting:
		b.WriteString(m.viewRoom())
		b.WriteString(promptStyle.Render(m.waitingHint()))

	case PhaseSelecting:
		b.WriteString(m.viewSelecting())

	case PhaseQuestion:
		b.WriteString(m.viewQuestion())

	case PhaseResults:
		b.WriteString(m.viewResults())

	case PhaseGameOver:
		b.WriteString(m.viewGameOver())
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("⚠️ " + m.errMsg))
	}

	if m.latency > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("延迟: %dms", m.latency)))
	}

	return docStyle.Render(b.String())
}

func (m *OnlineModel) waitingHint() string {
	if m.isHost {
		return "[s] 开始游戏  [q] 离开房间"
	}
	return "等待房主开始游戏... [q] 离开房间"
}

// viewRoom 渲染房间玩家列表
func (m *OnlineModel) viewRoom() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("房间号: %s  模式: %s\n\n", titleStyle(m.roomCode), m.gameMode))

	for _, p := range m.players {
		line := fmt.Sprintf("  %s (%d 分)", p.Name, p.Score)
		if p.IsHost {
			line = hostStyle.Render("👑 "+p.Name) + fmt.Sprintf(" (%d 分)", p.Score)
		}
		if !p.Connected {
			line += dimStyle.Render(" [离线]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

// viewSelecting 渲染轮换模式的选择界面
func (m *OnlineModel) viewSelecting() string {
	if m.turn == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("第 %d/%d 回合\n\n", m.turn.TurnIndex+1, m.turn.TotalTurns))

	myID := m.client.PlayerID
	switch {
	case m.turn.CategorySelectorID == myID:
		b.WriteString("轮到你选择分类:\n")
		for i, c := range m.categories {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, c))
		}
	case m.turn.TypeSelectorID == myID:
		b.WriteString("轮到你选择题型:\n")
		b.WriteString("  [1] 单选题\n  [2] 填空题\n  [3] 排序题\n  [4] 连线题\n")
	default:
		b.WriteString(dimStyle.Render("等待其他玩家选择分类和题型..."))
	}

	return b.String()
}

// viewQuestion 渲染题目和作答区
func (m *OnlineModel) viewQuestion() string {
	if m.question == nil {
		return ""
	}

	q := m.question
	var b strings.Builder
	b.WriteString(fmt.Sprintf("第 %d/%d 题  ⏰ %ds\n\n", m.questionIndex+1, m.totalCount, m.timeLimit))
	b.WriteString(boxStyle.Render(q.Text))
	b.WriteString("\n\n")

	switch q.Type {
	case protocol.TypeMultipleChoice:
		for i, opt := range q.Options {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, opt))
		}
		b.WriteString(promptStyle.Render("按数字作答"))

	case protocol.TypeFillBlank:
		b.WriteString(m.input.View())
		b.WriteString(promptStyle.Render("\n输入答案后回车"))

	case protocol.TypeOrder:
		for _, item := range q.Items {
			b.WriteString(fmt.Sprintf("  (%d) %s\n", item.ID, item.Text))
		}
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString(promptStyle.Render("\n按正确顺序输入编号，逗号分隔，如 2,0,1"))

	case protocol.TypeMatch:
		for i := range q.LeftItems {
			left := q.LeftItems[i]
			right := ""
			if i < len(q.RightItems) {
				right = fmt.Sprintf("(%d) %s", q.RightItems[i].ID, q.RightItems[i].Text)
			}
			b.WriteString(fmt.Sprintf("  (%d) %-12s %s\n", left.ID, left.Text, right))
		}
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString(promptStyle.Render("\n输入连线，如 0-2,1-0,2-1"))
	}

	if m.submitted {
		b.WriteString("\n\n")
		b.WriteString(correctStyle.Render("✅ 已提交"))
	}
	if m.answered > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d 人已作答", m.answered)))
	}

	return b.String()
}

// viewResults 渲染本轮排名
func (m *OnlineModel) viewResults() string {
	if m.results == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("📊 本轮结果\n\n")

	for _, r := range m.results.Results {
		mark := wrongStyle.Render("✗")
		if r.IsCorrect {
			mark = correctStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s  +%d 分 (%.1fs)  总分 %d\n",
			r.Rank, mark, r.PlayerName, r.Points, r.TimeTaken, r.TotalScore))
	}

	if m.isHost {
		b.WriteString(promptStyle.Render("[n] 下一题"))
	}

	return b.String()
}

// viewGameOver 渲染最终排名
func (m *OnlineModel) viewGameOver() string {
	if m.final == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏁 游戏结束！冠军: %s\n\n", titleStyle(m.final.Winner.Name)))

	for i, p := range m.final.FinalResults {
		b.WriteString(fmt.Sprintf("  %d. %s  %d 分\n", i+1, p.Name, p.Score))
	}

	hint := "[q] 返回大厅"
	if m.isHost {
		hint = "[r] 再来一局  " + hint
	}
	b.WriteString(promptStyle.Render(hint))

	return b.String()
}
