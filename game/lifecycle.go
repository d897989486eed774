// game/lifecycle.go
package game

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/words"
)

type resetOptions struct {
	resetScores        bool
	resetRoundCounters bool
	roomState          models.RoomState // "" leaves the phase untouched
	duration           int              // seconds until the phase ends; 0 clears the deadline
}

// resetRoundState clears per-round state on the aggregate: strokes, hints,
// guesses, the word and all per-round player flags.
func (e *Engine) resetRoundState(room *models.Room, opts resetOptions) {
	now := e.clock.Now()
	room.GameState.Strokes = []models.Stroke{}
	room.GameState.HintLetters = []models.HintLetter{}
	room.GameState.GuessedWords = []string{}
	room.GameState.Word = ""
	room.GameState.TimerStartedAt = now
	if opts.duration > 0 {
		room.GameState.PhaseEndsAt = now.UnixMilli() + int64(opts.duration)*1000
	} else {
		room.GameState.PhaseEndsAt = 0
	}

	// hasDrawn is per round, not per turn: it only resets when a new round
	// starts (startRound) or the whole game resets.
	for _, p := range room.Players {
		p.Guessed = false
		p.GuessedAt = nil
		if opts.resetRoundCounters {
			p.HasDrawn = false
		}
		if opts.resetScores {
			p.Score = 0
		}
	}

	if opts.resetRoundCounters {
		room.GameState.CurrentRound = 0
		room.GameState.CurrentDrawerID = ""
		room.GameState.RoundOrder = []string{}
		room.GameState.RoundStartedAt = now.UnixMilli()
	}

	if opts.roomState != "" {
		room.GameState.RoomState = opts.roomState
	}
}

// startRound rebuilds the drawer order from the current roster and clears
// per-round drawn flags.
func (e *Engine) startRound(room *models.Room) {
	order := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		p.HasDrawn = false
		order = append(order, p.PlayerID)
	}
	room.GameState.RoundOrder = order
	room.GameState.CurrentDrawerID = ""
	room.GameState.RoundStartedAt = e.clock.Now().UnixMilli()
}

// pickNextDrawer scans the round order for the first player who has not
// drawn this round, marks them drawn and makes them the current drawer.
func pickNextDrawer(room *models.Room) *models.Player {
	active := room.GameState.RoundOrder[:0]
	for _, id := range room.GameState.RoundOrder {
		if room.FindPlayer(id) != nil {
			active = append(active, id)
		}
	}
	room.GameState.RoundOrder = active

	for _, id := range active {
		p := room.FindPlayer(id)
		if p != nil && !p.HasDrawn {
			p.HasDrawn = true
			room.GameState.CurrentDrawerID = p.PlayerID
			return p
		}
	}
	return nil
}

func allEligibleDrew(room *models.Room) bool {
	eligible := 0
	for _, id := range room.GameState.RoundOrder {
		p := room.FindPlayer(id)
		if p == nil {
			continue
		}
		eligible++
		if !p.HasDrawn {
			return false
		}
	}
	return eligible > 0
}

// StartGame begins a game. Only the room creator may start, the game must
// not be running, and at least two players must be present. The optional
// customWords replace the room's custom word list first.
func (e *Engine) StartGame(ctx context.Context, roomID, callerID string, customWords []string) error {
	return e.withRoom(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.Creator != callerID {
			return ErrNotCreator
		}
		if room.GameState.CurrentRound != 0 {
			return ErrGameInProgress
		}
		if len(room.Players) < models.MinRoomPlayers {
			return ErrNotEnoughPlayers
		}
		if customWords != nil {
			room.Settings.CustomWords = customWords
		}

		rt.phaseTimer.Stop()
		rt.hintTimer.Stop()
		rt.strokes = make(map[string]*models.Stroke)

		e.resetRoundState(room, resetOptions{
			resetScores:        true,
			resetRoundCounters: true,
			roomState:          models.StateChoosingWord,
		})
		room.GameState.CurrentRound = 1
		e.startRound(room)

		if err := e.save(ctx, room); err != nil {
			return err
		}
		logger.Log.Infof("Room %s started a game with %d players", roomID, len(room.Players))
		e.emitRoom(roomID, network.MsgTypeGameStarted, room)

		return e.nextTurnLocked(ctx, rt, room)
	})
}

type chooseWordPayload struct {
	Words        []string `json:"words"`
	Time         int      `json:"time"`
	CurrentRound int      `json:"currentRound"`
	DrawerID     string   `json:"drawerId"`
}

type choosingWordPayload struct {
	CurrentPlayer *models.Player `json:"currentPlayer"`
	Time          int            `json:"time"`
	CurrentRound  int            `json:"currentRound"`
}

// nextTurnLocked advances to the next drawer, entering CHOOSING_WORD, or
// ends the round/game when no eligible drawer remains.
func (e *Engine) nextTurnLocked(ctx context.Context, rt *roomRuntime, room *models.Room) error {
	roomID := room.RoomID

	if allEligibleDrew(room) {
		room.GameState.CurrentRound++
		if room.GameState.CurrentRound > TotalRounds {
			if err := e.save(ctx, room); err != nil {
				return err
			}
			return e.endGameLocked(ctx, rt, room)
		}
		e.startRound(room)
	}

	drawer := room.CurrentDrawer()
	if drawer == nil {
		drawer = pickNextDrawer(room)
	}
	if drawer == nil {
		if err := e.save(ctx, room); err != nil {
			return err
		}
		if len(room.Players) < models.MinRoomPlayers {
			return e.endGameLocked(ctx, rt, room)
		}
		// No drawer but enough players; keep state and wait for membership
		// changes to re-trigger scheduling.
		return nil
	}

	candidates, err := e.words.RandomWords(WordChoices, room.Settings.Language, room.Settings.OnlyCustomWords, room.Settings.CustomWords)
	if err != nil {
		logger.Log.Warnf("Room %s: word source failed: %v", roomID, err)
		e.endRoundLocked(ctx, rt, room, models.ReasonTimeUp)
		return nil
	}

	e.emitPlayer(drawer.PlayerID, network.MsgTypeChooseWord, chooseWordPayload{
		Words:        candidates,
		Time:         int(WordChooseTime.Seconds()),
		CurrentRound: room.GameState.CurrentRound,
		DrawerID:     drawer.PlayerID,
	})
	e.emitRoomExcept(roomID, drawer.PlayerID, network.MsgTypeChoosingWord, choosingWordPayload{
		CurrentPlayer: drawer,
		Time:          int(WordChooseTime.Seconds()),
		CurrentRound:  room.GameState.CurrentRound,
	})

	now := e.clock.Now()
	room.GameState.RoomState = models.StateChoosingWord
	room.GameState.TimerStartedAt = now
	room.GameState.PhaseEndsAt = now.Add(WordChooseTime).UnixMilli()
	if err := e.save(ctx, room); err != nil {
		return err
	}

	rt.phaseTimer.Schedule(WordChooseTime, func() {
		e.autoSelectWord(roomID, candidates)
	})
	return nil
}

// autoSelectWord fires when the drawer ran out the word-choice clock: pick a
// random candidate on their behalf, re-querying the word source if the
// candidate list is somehow empty, and ending the round as a last resort.
func (e *Engine) autoSelectWord(roomID string, candidates []string) {
	ctx := context.Background()
	e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.GameState.Word != "" {
			return nil // drawer chose in time
		}
		if room.GameState.RoomState != models.StateChoosingWord {
			return nil
		}

		if len(candidates) == 0 {
			refreshed, err := e.words.RandomWords(WordChoices, room.Settings.Language, room.Settings.OnlyCustomWords, room.Settings.CustomWords)
			if err != nil || len(refreshed) == 0 {
				logger.Log.Warnf("Room %s: no words available for auto-select, ending round", roomID)
				e.endRoundLocked(ctx, rt, room, models.ReasonTimeUp)
				return nil
			}
			candidates = refreshed
		}

		word := candidates[rand.Intn(len(candidates))]
		return e.selectWordLocked(ctx, rt, room, word)
	})
}

// SelectWord handles the drawer's word choice.
func (e *Engine) SelectWord(ctx context.Context, roomID, callerID, word string) error {
	return e.withRoom(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.GameState.CurrentRound == 0 || room.GameState.RoomState != models.StateChoosingWord {
			return nil
		}
		if callerID != room.GameState.CurrentDrawerID {
			return ErrNotDrawer
		}
		return e.selectWordLocked(ctx, rt, room, word)
	})
}

type wordChosenPayload struct {
	Word     string `json:"word"`
	Time     int    `json:"time"`
	DrawerID string `json:"drawerId"`
}

type maskedWordPayload struct {
	Word     []int  `json:"word"`
	Time     int    `json:"time"`
	DrawerID string `json:"drawerId"`
}

func (e *Engine) selectWordLocked(ctx context.Context, rt *roomRuntime, room *models.Room, word string) error {
	roomID := room.RoomID
	rt.phaseTimer.Stop()

	drawer := e.currentDrawerOrEnd(ctx, rt, room)
	if drawer == nil {
		return nil
	}

	now := e.clock.Now()
	room.GameState.Word = word
	room.GameState.RoomState = models.StateDrawing
	room.GameState.TimerStartedAt = now
	room.GameState.PhaseEndsAt = now.Add(DrawingTime).UnixMilli()
	if err := e.save(ctx, room); err != nil {
		return err
	}

	drawingSecs := int(DrawingTime.Seconds())
	e.emitPlayer(drawer.PlayerID, network.MsgTypeWordChosen, wordChosenPayload{
		Word:     word,
		Time:     drawingSecs,
		DrawerID: drawer.PlayerID,
	})
	e.emitRoomExcept(roomID, drawer.PlayerID, network.MsgTypeGuessWordChosen, maskedWordPayload{
		Word:     words.Mask(word),
		Time:     drawingSecs,
		DrawerID: drawer.PlayerID,
	})

	rt.phaseTimer.Schedule(DrawingTime, func() {
		e.drawingTimeUp(roomID)
	})
	if room.Settings.Hints > 0 {
		rt.hintTimer.Schedule(InitialHintsTime, func() {
			e.sendHint(roomID)
		})
	}
	return nil
}

func (e *Engine) drawingTimeUp(roomID string) {
	e.guarded(context.Background(), roomID, func(rt *roomRuntime, room *models.Room) error {
		e.endRoundLocked(context.Background(), rt, room, models.ReasonTimeUp)
		return nil
	})
}

type turnEndedPayload struct {
	Room         *models.Room          `json:"room"`
	EndedRound   int                   `json:"endedRound"`
	Word         string                `json:"word"`
	Reason       models.RoundEndReason `json:"reason"`
	Time         int                   `json:"time"`
	ClearDrawing bool                  `json:"clearDrawing"`
}

// endRoundLocked finishes the current turn: awards points (unless the drawer
// left), resets per-round state into the GUESSED display phase and schedules
// the next turn. Idempotent per round.
func (e *Engine) endRoundLocked(ctx context.Context, rt *roomRuntime, room *models.Room, reason models.RoundEndReason) {
	if room.GameState.CurrentRound == 0 || room.GameState.RoomState == models.StateGuessed {
		return
	}
	roomID := room.RoomID

	rt.phaseTimer.Stop()
	rt.hintTimer.Stop()
	rt.strokes = make(map[string]*models.Stroke)

	drawerID := room.GameState.CurrentDrawerID
	if reason != models.ReasonLeft && drawerID != "" {
		e.givePoints(room, drawerID)
	}

	word := room.GameState.Word
	room.GameState.CurrentDrawerID = ""
	e.resetRoundState(room, resetOptions{
		roomState: models.StateGuessed,
		duration:  int(EndRoundTime.Seconds()),
	})
	if err := e.save(ctx, room); err != nil {
		logger.Log.Errorf("Room %s: failed to persist round end: %v", roomID, err)
		return
	}

	endedRound := room.GameState.CurrentRound
	if endedRound > TotalRounds {
		endedRound = TotalRounds
	}
	e.emitRoom(roomID, network.MsgTypeTurnEnded, turnEndedPayload{
		Room:         room,
		EndedRound:   endedRound,
		Word:         word,
		Reason:       reason,
		Time:         int(EndRoundTime.Seconds()),
		ClearDrawing: true,
	})

	rt.phaseTimer.Schedule(EndRoundTime, func() {
		e.advanceAfterRoundEnd(roomID)
	})
}

func (e *Engine) advanceAfterRoundEnd(roomID string) {
	ctx := context.Background()
	e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.GameState.CurrentRound == 0 {
			return nil // game ended in the meantime
		}
		return e.nextTurnLocked(ctx, rt, room)
	})
}

type gameEndedPayload struct {
	Room *models.Room `json:"room"`
	Time int          `json:"time"`
}

// endGameLocked resets the room to NOT_STARTED. Clients are notified with
// the pre-reset snapshot so final standings stay visible. Idempotent.
func (e *Engine) endGameLocked(ctx context.Context, rt *roomRuntime, room *models.Room) error {
	if room.GameState.CurrentRound == 0 {
		return nil
	}
	roomID := room.RoomID

	rt.phaseTimer.Stop()
	rt.hintTimer.Stop()
	rt.strokes = make(map[string]*models.Stroke)

	final := snapshotRoom(room)
	final.GameState.RoomState = models.StateWinner

	room.VoteKickers = []models.KickVote{}
	e.resetRoundState(room, resetOptions{
		resetScores:        true,
		resetRoundCounters: true,
		roomState:          models.StateNotStarted,
	})
	if err := e.save(ctx, room); err != nil {
		return err
	}

	logger.Log.Infof("Room %s: game ended", roomID)
	e.emitRoom(roomID, network.MsgTypeGameEnded, gameEndedPayload{
		Room: final,
		Time: int(WinnerShowTime.Seconds()),
	})
	return nil
}

// snapshotRoom deep-copies a room through its JSON form.
func snapshotRoom(room *models.Room) *models.Room {
	data, err := json.Marshal(room)
	if err != nil {
		return room
	}
	var copied models.Room
	if err := json.Unmarshal(data, &copied); err != nil {
		return room
	}
	return &copied
}
