// game/membership.go
package game

import (
	"context"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/timer"
	"github.com/wfunc/drawguess/words"
)

// Join adds a player to a room, or restores a previous slot when the stable
// client id matches a player already in the roster. 重连复用原座位 so the
// capacity check only applies to genuinely new players. On success the joiner gets
// the full room and, mid-game, a state snapshot; everyone else gets a
// PLAYER_JOINED event.
func (e *Engine) Join(ctx context.Context, roomID, playerID, clientID, name string) error {
	e.CancelScheduledLeave(clientID)

	return e.withRoom(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		existing := room.FindPlayerByClientID(clientID)
		if existing == nil && len(room.Players) >= room.Settings.Players {
			return ErrRoomFull
		}

		var player *models.Player
		if existing != nil {
			oldID := existing.PlayerID
			existing.PlayerID = playerID
			player = existing

			if room.GameState.CurrentDrawerID == oldID {
				room.GameState.CurrentDrawerID = playerID
			}
			for i, id := range room.GameState.RoundOrder {
				if id == oldID {
					room.GameState.RoundOrder[i] = playerID
				}
			}
			logger.Log.Infof("Player %s reconnected to room %s as %s", clientID, roomID, playerID)
		} else {
			player = &models.Player{
				PlayerID: playerID,
				ClientID: clientID,
				Name:     name,
				JoinedAt: e.clock.Now().UnixMilli(),
			}
			room.Players = append(room.Players, player)
		}

		if err := e.save(ctx, room); err != nil {
			return err
		}

		e.emitPlayer(playerID, network.MsgTypeJoinedRoom, room)
		e.emitRoomExcept(roomID, playerID, network.MsgTypePlayerJoined, player)

		if room.GameState.RoomState != models.StateNotStarted {
			e.sendMidGameState(room, playerID)
		}
		return nil
	})
}

// sendMidGameState catches a joining or reconnecting client up with the
// round in progress: the snapshot, the committed strokes and a re-send of
// the active phase event with the remaining time.
func (e *Engine) sendMidGameState(room *models.Room, playerID string) {
	now := e.clock.Now().UnixMilli()
	remaining := 0
	if room.GameState.PhaseEndsAt > now {
		remaining = int((room.GameState.PhaseEndsAt - now + 500) / 1000)
	}

	mask := []int{}
	if room.GameState.RoomState != models.StateChoosingWord {
		mask = words.Mask(room.GameState.Word)
	}
	snapshot := models.MidGameState{
		CurrentRound:    room.GameState.CurrentRound,
		Strokes:         room.GameState.Strokes,
		GuessedWords:    room.GameState.GuessedWords,
		CurrentDrawerID: room.GameState.CurrentDrawerID,
		RoundOrder:      room.GameState.RoundOrder,
		RoundStartedAt:  room.GameState.RoundStartedAt,
		HintLetters:     room.GameState.HintLetters,
		RoomState:       room.GameState.RoomState,
		TimerStartedAt:  room.GameState.TimerStartedAt,
		PhaseEndsAt:     room.GameState.PhaseEndsAt,
		Word:            mask,
		Time:            remaining,
	}
	e.emitPlayer(playerID, network.MsgTypeGameState, snapshot)

	strokes := room.GameState.Strokes
	if strokes == nil {
		strokes = []models.Stroke{}
	}
	e.emitPlayer(playerID, network.MsgTypeDrawFull, strokes)

	drawer := room.CurrentDrawer()
	switch room.GameState.RoomState {
	case models.StateChoosingWord:
		if drawer != nil {
			e.emitPlayer(playerID, network.MsgTypeChoosingWord, choosingWordPayload{
				CurrentPlayer: drawer,
				Time:          remaining,
				CurrentRound:  room.GameState.CurrentRound,
			})
		}
	case models.StateDrawing:
		if room.GameState.CurrentDrawerID == playerID {
			e.emitPlayer(playerID, network.MsgTypeWordChosen, wordChosenPayload{
				Word:     room.GameState.Word,
				Time:     remaining,
				DrawerID: room.GameState.CurrentDrawerID,
			})
		} else {
			e.emitPlayer(playerID, network.MsgTypeGuessWordChosen, maskedWordPayload{
				Word:     words.Mask(room.GameState.Word),
				Time:     remaining,
				DrawerID: room.GameState.CurrentDrawerID,
			})
		}
	}
}

// Leave removes a player immediately (explicit leave or expired grace).
func (e *Engine) Leave(ctx context.Context, roomID, playerID string) error {
	return e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		return e.leaveLocked(ctx, rt, room, playerID)
	})
}

func (e *Engine) leaveLocked(ctx context.Context, rt *roomRuntime, room *models.Room, playerID string) error {
	roomID := room.RoomID
	player := room.FindPlayer(playerID)
	if player == nil {
		return nil
	}

	room.RemoveFromRoundOrder(playerID)

	if room.Creator == playerID {
		room.Creator = ""
		for _, p := range room.Players {
			if p.PlayerID != playerID {
				room.Creator = p.PlayerID
				break
			}
		}
	}

	// A leaving drawer forfeits the turn: wipe the canvas first so the
	// remaining clients don't keep stale drawings, then end the round.
	if room.GameState.CurrentDrawerID == playerID {
		rt.strokes = make(map[string]*models.Stroke)
		room.GameState.Strokes = []models.Stroke{}
		room.GameState.CurrentDrawerID = ""
		if err := e.save(ctx, room); err != nil {
			return err
		}
		e.emitRoom(roomID, network.MsgTypeClearDraw, nil)
		e.endRoundLocked(ctx, rt, room, models.ReasonLeft)
	}

	room.RemovePlayer(playerID)

	if len(room.Players) == 0 {
		e.dropRuntime(roomID)
		if err := e.store.DeleteRoom(ctx, roomID); err != nil && err != persistence.ErrRoomNotFound {
			return err
		}
		logger.Log.Infof("Room %s deleted: last player left", roomID)
		return nil
	}

	if err := e.save(ctx, room); err != nil {
		return err
	}
	e.emitRoom(roomID, network.MsgTypePlayerLeft, player)

	if len(room.Players) < models.MinRoomPlayers && room.GameState.CurrentRound >= 1 {
		return e.endGameLocked(ctx, rt, room)
	}
	return nil
}

// ScheduleLeave starts the disconnect grace period: if the client does not
// reconnect in time, the player is removed as if they had left.
func (e *Engine) ScheduleLeave(roomID, playerID, clientID string) {
	key := clientID
	if key == "" {
		key = playerID
	}

	e.mutex.Lock()
	handle, exists := e.grace[key]
	if !exists {
		handle = timer.NewHandle(e.clock)
		e.grace[key] = handle
	}
	e.mutex.Unlock()

	handle.Schedule(DisconnectGrace, func() {
		e.mutex.Lock()
		delete(e.grace, key)
		e.mutex.Unlock()

		if err := e.Leave(context.Background(), roomID, playerID); err != nil {
			logger.Log.Warnf("Failed to remove player %s from room %s after disconnect: %v", playerID, roomID, err)
		}
	})
}

// CancelScheduledLeave stops a pending grace removal for the client.
func (e *Engine) CancelScheduledLeave(clientID string) {
	if clientID == "" {
		return
	}
	e.mutex.Lock()
	handle, exists := e.grace[clientID]
	if exists {
		delete(e.grace, clientID)
	}
	e.mutex.Unlock()

	if exists {
		handle.Stop()
	}
}

type kickVotePayload struct {
	Voter       string `json:"voter"`
	Player      string `json:"player"`
	Votes       int    `json:"votes"`
	VotesNeeded int    `json:"votesNeeded"`
}

// VoteKick registers one vote against the target. When a majority of the
// current roster has voted, the target is removed and notified.
func (e *Engine) VoteKick(ctx context.Context, roomID, voterID, targetID string) error {
	return e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		target := room.FindPlayer(targetID)
		voter := room.FindPlayer(voterID)
		if target == nil || voter == nil {
			return nil
		}

		var vote *models.KickVote
		for i := range room.VoteKickers {
			if room.VoteKickers[i].TargetID == targetID {
				vote = &room.VoteKickers[i]
				break
			}
		}
		if vote == nil {
			room.VoteKickers = append(room.VoteKickers, models.KickVote{
				TargetID: targetID,
				Voters:   []string{voterID},
			})
			vote = &room.VoteKickers[len(room.VoteKickers)-1]
		} else {
			for _, v := range vote.Voters {
				if v == voterID {
					return nil
				}
			}
			vote.Voters = append(vote.Voters, voterID)
		}

		votes := len(vote.Voters)
		votesNeeded := (len(room.Players) + 1) / 2

		e.emitRoom(roomID, network.MsgTypeKickVote, kickVotePayload{
			Voter:       voter.Name,
			Player:      target.Name,
			Votes:       votes,
			VotesNeeded: votesNeeded,
		})

		if votes < votesNeeded {
			return e.save(ctx, room)
		}

		wasDrawer := room.GameState.CurrentDrawerID == targetID
		wasCreator := room.Creator == targetID

		room.RemovePlayer(targetID)
		kept := room.VoteKickers[:0]
		for _, v := range room.VoteKickers {
			if v.TargetID != targetID {
				kept = append(kept, v)
			}
		}
		room.VoteKickers = kept

		if wasCreator {
			room.Creator = ""
			if len(room.Players) > 0 {
				room.Creator = room.Players[0].PlayerID
			}
		}

		if err := e.save(ctx, room); err != nil {
			return err
		}
		logger.Log.Infof("Player %s kicked from room %s by vote (%d/%d)", targetID, roomID, votes, votesNeeded)

		e.emitRoom(roomID, network.MsgTypePlayerLeft, target)
		e.emitPlayer(targetID, network.MsgTypeKicked, nil)
		e.notifier.Evict(targetID)

		if wasDrawer {
			rt.strokes = make(map[string]*models.Stroke)
			room.GameState.Strokes = []models.Stroke{}
			room.GameState.CurrentDrawerID = ""
			if err := e.save(ctx, room); err != nil {
				return err
			}
			e.emitRoom(roomID, network.MsgTypeClearDraw, nil)
			e.endRoundLocked(ctx, rt, room, models.ReasonLeft)
		}

		if len(room.Players) < models.MinRoomPlayers && room.GameState.CurrentRound >= 1 {
			return e.endGameLocked(ctx, rt, room)
		}
		return nil
	})
}
