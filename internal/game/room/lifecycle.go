package room

import (
	"log"
	"time"

	"github.com/palemoky/trivia-arena/internal/game/quiz"
	"github.com/palemoky/trivia-arena/internal/protocol"
)

// handleJoin 玩家加入。房主创建房间时以 asHost 加入。
func (r *Room) handleJoin(c cmdJoin) {
	client := c.client

	if r.status != StatusLobby && !c.asHost {
		client.SendMessage(protocol.NewJoinError("游戏已开始，无法加入"))
		return
	}

	if r.opts.MaxPlayers > 0 && len(r.players) >= r.opts.MaxPlayers {
		client.SendMessage(protocol.NewJoinError("房间已满"))
		return
	}

	p := &Player{
		ID:        client.GetID(),
		Name:      client.GetName(),
		Client:    client,
		Connected: true,
	}
	r.players = append(r.players, p)
	client.SetRoom(r.code)

	if c.asHost {
		r.hostID = p.ID
		r.unicast(p, protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
			RoomCode: r.code,
			Players:  r.playersInfo(),
			IsHost:   true,
			GameMode: r.mode,
		}))
		log.Printf("🏠 房间 %s 已创建，房主 %s (%s)", r.code, p.Name, string(r.mode))
		return
	}

	r.unicast(p, protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: r.code,
		Players:  r.playersInfo(),
		IsHost:   false,
		GameMode: r.mode,
	}))
	r.broadcastExcept(p.ID, protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Players: r.playersInfo(),
	}))

	log.Printf("👤 玩家 %s 加入房间 %s", p.Name, r.code)
}

// handleLeave 玩家显式离开：从名单彻底移除
func (r *Room) handleLeave(playerID string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	p := r.players[idx]
	if p.Client != nil {
		p.Client.SetRoom("")
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.answers, playerID)

	log.Printf("👋 玩家 %s 离开房间 %s", p.Name, r.code)

	if len(r.players) == 0 {
		r.destroy()
		return
	}

	if r.hostID == playerID {
		r.migrateHost()
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		Players: r.playersInfo(),
	}))

	switch r.status {
	case StatusInRound:
		// 离开者退出答题人数，可能满足提前收卷条件
		r.maybeCloseRound()
	case StatusSelectingCategory:
		// 当前选择人离开时立即代选，避免房间停滞
		if r.categorySelectorID == playerID {
			r.autoSelectCategory()
		}
	case StatusSelectingType:
		if r.typeSelectorID == playerID {
			r.autoSelectType()
		}
	}
}

// handleDisconnect 玩家掉线：标记离线但保留名单位置、分数和回合顺位
func (r *Room) handleDisconnect(playerID string) {
	p := r.findPlayer(playerID)
	if p == nil || !p.Connected {
		return
	}

	p.Connected = false
	p.Client = nil

	log.Printf("📴 玩家 %s 在房间 %s 中掉线", p.Name, r.code)

	// 房主角色必须始终落在在线玩家上，先于任何后续大厅操作迁移
	if r.hostID == playerID {
		r.migrateHost()
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{
		PlayerID:   p.ID,
		PlayerName: p.Name,
	}))

	// 掉线玩家不计入全员答完的判定，避免一个断线客户端拖住整个房间
	if r.status == StatusInRound {
		r.maybeCloseRound()
	}
}

// handleReconnect 玩家凭同一身份重连：恢复在线标记，不重置分数和位置
func (r *Room) handleReconnect(c cmdReconnect) {
	p := r.findPlayer(c.playerID)
	if p == nil {
		return
	}

	p.Connected = true
	p.Client = c.client
	c.client.SetRoom(r.code)

	log.Printf("📶 玩家 %s 重连到房间 %s", p.Name, r.code)

	r.broadcastExcept(p.ID, protocol.MustNewMessage(protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{
		PlayerID:   p.ID,
		PlayerName: p.Name,
	}))

	r.resync(p)
}

// resync 给重连的玩家补发当前局面，不让它干等下一次广播。
// 先发名单快照，再按状态补发进行中的题目或回合信息。
func (r *Room) resync(p *Player) {
	r.unicast(p, protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: r.code,
		Players:  r.playersInfo(),
		IsHost:   r.hostID == p.ID,
		GameMode: r.mode,
	}))

	switch r.status {
	case StatusInRound:
		remaining := int(time.Until(r.roundDeadline).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		r.unicast(p, protocol.MustNewMessage(protocol.MsgQuestion, protocol.QuestionPayload{
			Question:       quiz.View(&r.questions[r.current]),
			QuestionIndex:  r.current,
			TotalQuestions: r.totalQuestions(),
			TimeLimit:      remaining,
		}))
	case StatusSelectingCategory, StatusSelectingType:
		ids := make([]string, len(r.availableCategories))
		for i, c := range r.availableCategories {
			ids[i] = c.ID
		}
		r.unicast(p, protocol.MustNewMessage(protocol.MsgTurnStart, protocol.TurnStartPayload{
			TurnIndex:            r.turnIndex,
			TotalTurns:           r.totalTurns,
			CategorySelectorID:   r.categorySelectorID,
			TypeSelectorID:       r.typeSelectorID,
			AvailableCategoryIDs: ids,
			SelectionTimeout:     int(r.opts.SelectionTimeout.Seconds()),
		}))
		if r.status == StatusSelectingType {
			r.unicast(p, protocol.MustNewMessage(protocol.MsgCategorySelected, protocol.CategorySelectedPayload{
				CategoryID: r.selectedCategory,
				NextPhase:  string(StatusSelectingType),
			}))
		}
	}
}

// migrateHost 房主转移：按加入顺序找下一个在线玩家；
// 全员离线时退而取名单第一人，保证房主约束不被打破。
func (r *Room) migrateHost() {
	if len(r.players) == 0 {
		return
	}

	next := r.players[0]
	for _, p := range r.players {
		if p.Connected {
			next = p
			break
		}
	}
	r.hostID = next.ID

	r.broadcast(protocol.MustNewMessage(protocol.MsgHostChanged, protocol.HostChangedPayload{
		HostID:   next.ID,
		HostName: next.Name,
	}))

	log.Printf("👑 房间 %s 房主转移给 %s", r.code, next.Name)
}

// destroy 名单清空，销毁房间并释放房间号
func (r *Room) destroy() {
	r.cancelTimer()
	log.Printf("🏠 房间 %s 已解散", r.code)
	if r.opts.OnEmpty != nil {
		r.opts.OnEmpty(r.code)
	}
}
