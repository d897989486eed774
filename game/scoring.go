// game/scoring.go
package game

import (
	"context"
	"math"
	"math/rand"
	"regexp"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/words"
)

type guessChatPayload struct {
	Guess  string         `json:"guess"`
	Player *models.Player `json:"player"`
}

// Guess 处理一次猜词。A correct guess from a non-drawer who has not guessed
// yet marks them guessed; anything else is relayed to the room as chat.
func (e *Engine) Guess(ctx context.Context, roomID, playerID, guess string) error {
	if guess == "" {
		return nil
	}
	return e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		player := room.FindPlayer(playerID)
		if player == nil {
			return nil
		}
		drawer := e.currentDrawerOrEnd(ctx, rt, room)
		if drawer == nil {
			return nil
		}

		correct := player.PlayerID != drawer.PlayerID &&
			!player.Guessed &&
			words.Matches(room.GameState.Word, guess)
		if !correct {
			e.emitRoom(room.RoomID, network.MsgTypeGuessChat, guessChatPayload{
				Guess:  guess,
				Player: player,
			})
			return nil
		}

		now := e.clock.Now()
		player.Guessed = true
		player.GuessedAt = &now
		if err := e.save(ctx, room); err != nil {
			return err
		}
		e.emitRoom(room.RoomID, network.MsgTypeGuessed, player)

		for _, p := range room.Players {
			if !p.Guessed && p.PlayerID != drawer.PlayerID {
				return nil
			}
		}
		e.endRoundLocked(ctx, rt, room, models.ReasonAllGuessed)
		return nil
	})
}

// givePoints awards end-of-round scores in memory: each guesser earns up to
// GuessPoints shrinking by one per second taken, and the drawer earns a
// per-guess bonus on top of a flat reward, capped at 1.25x GuessPoints.
// Nobody scores when nobody guessed.
func (e *Engine) givePoints(room *models.Room, drawerID string) {
	now := e.clock.Now()

	guessed := make([]*models.Player, 0, len(room.Players))
	for _, p := range room.Players {
		if p.Guessed {
			guessed = append(guessed, p)
		}
	}
	if len(guessed) == 0 {
		return
	}

	for _, p := range guessed {
		guessedAt := now
		if p.GuessedAt != nil {
			guessedAt = *p.GuessedAt
		}
		secondsTaken := math.Abs(room.GameState.TimerStartedAt.Sub(guessedAt).Seconds())
		p.Score += int(math.Round(math.Max(GuessPoints-secondsTaken, 0)))
	}

	drawer := room.FindPlayer(drawerID)
	if drawer == nil {
		return
	}
	guessers := len(room.Players) - 1
	if guessers < 1 {
		guessers = 1
	}
	bonusPerGuess := float64(GuessPoints) / float64(guessers)
	reward := int(math.Round(DrawerPoints + float64(len(guessed))*bonusPerGuess*1.1))
	maxReward := int(math.Round(GuessPoints * 1.25))
	if reward > maxReward {
		reward = maxReward
	}
	drawer.Score += reward
}

var whitespaceChar = regexp.MustCompile(`\s`)

// sendHint reveals one random unrevealed, non-whitespace letter of the word
// to everyone but the drawer, then schedules itself until the room's hint
// allowance is spent. The whole word can never be revealed through hints.
func (e *Engine) sendHint(roomID string) {
	ctx := context.Background()
	e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		word := room.GameState.Word
		if word == "" {
			return nil
		}
		if len(room.GameState.HintLetters) >= room.Settings.Hints {
			return nil
		}

		chars := words.Graphemes(word)
		if len(room.GameState.HintLetters) >= len(chars)-1 {
			return nil
		}

		revealed := make(map[int]bool, len(room.GameState.HintLetters))
		for _, h := range room.GameState.HintLetters {
			revealed[h.Index] = true
		}
		remaining := make([]int, 0, len(chars))
		for i, c := range chars {
			if !revealed[i] && !whitespaceChar.MatchString(c) {
				remaining = append(remaining, i)
			}
		}
		if len(remaining) == 0 {
			return nil
		}

		idx := remaining[rand.Intn(len(remaining))]
		hint := models.HintLetter{Index: idx, Letter: chars[idx]}

		drawer := e.currentDrawerOrEnd(ctx, rt, room)
		if drawer == nil {
			return nil
		}

		room.GameState.HintLetters = append(room.GameState.HintLetters, hint)
		if err := e.save(ctx, room); err != nil {
			return err
		}
		e.emitRoomExcept(roomID, drawer.PlayerID, network.MsgTypeGuessHint, hint)
		logger.Log.Debugf("Room %s: revealed hint letter at index %d", roomID, idx)

		if len(room.GameState.HintLetters) != room.Settings.Hints {
			rt.hintTimer.Schedule(HintsTime, func() {
				e.sendHint(roomID)
			})
		}
		return nil
	})
}

type reactionPayload struct {
	PlayerID string `json:"playerId"`
	Type     string `json:"type"`
}

// React broadcasts a like/dislike reaction. The drawer cannot react to their
// own drawing and each player gets one reaction per round.
func (e *Engine) React(ctx context.Context, roomID, playerID, reactionType string) error {
	if reactionType != "like" && reactionType != "dislike" {
		return nil
	}
	return e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.GameState.CurrentDrawerID == playerID {
			return nil
		}
		round := room.GameState.CurrentRound
		if rt.reacted[playerID] == round && round != 0 {
			return nil
		}
		rt.reacted[playerID] = round

		e.emitRoom(roomID, network.MsgTypeReactionEvent, reactionPayload{
			PlayerID: playerID,
			Type:     reactionType,
		})
		return nil
	})
}
