package room

import "time"

// scheduleTimer 启动房间唯一的定时器槽位。每次调度都会使上一个
// 定时器的 gen 失效，已触发但未处理的旧回调会在 handleTimerFired
// 中被识别为陈旧而丢弃，保证"刚答完最后一题"与"截止触发"不竞争。
func (r *Room) scheduleTimer(d time.Duration) {
	r.cancelTimer()

	gen := r.timerGen
	r.timer = time.AfterFunc(d, func() {
		r.enqueue(cmdTimerFired{gen: gen})
	})
}

// cancelTimer 取消当前定时器。Stop 失败（回调已入队）没有影响，
// gen 已前移，陈旧命令会被丢弃。
func (r *Room) cancelTimer() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// handleTimerFired 定时器到期命令。按当前状态决定语义：
// 答题截止、选择超时代选、结果窗口自动进入下一题。
func (r *Room) handleTimerFired(gen uint64) {
	if gen != r.timerGen {
		return // 已被取代的定时器
	}

	switch r.status {
	case StatusInRound:
		r.closeRound()
	case StatusSelectingCategory:
		r.autoSelectCategory()
	case StatusSelectingType:
		r.autoSelectType()
	case StatusRoundResults:
		r.advance()
	}
}
