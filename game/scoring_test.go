package game

import (
	"context"
	"testing"
	"time"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
)

// startDrawingPhase starts a game and moves straight into the drawing phase
// with p1 as drawer and the given secret word.
func startDrawingPhase(t *testing.T, te *testEngine, roomID, word string) {
	t.Helper()
	ctx := context.Background()
	if err := te.engine.StartGame(ctx, roomID, "p1", nil); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if err := te.engine.SelectWord(ctx, roomID, "p1", word); err != nil {
		t.Fatalf("SelectWord failed: %v", err)
	}
}

func TestGuess_CorrectGuessScoresAndEndsRound(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 2)
	ctx := context.Background()

	startDrawingPhase(t, te, roomID, "apple")

	te.clock.Advance(10 * time.Second)
	// Case and surrounding whitespace must not matter.
	if err := te.engine.Guess(ctx, roomID, "p2", "  Apple "); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}

	guessed, ok := te.notifier.lastOf(network.MsgTypeGuessed)
	if !ok {
		t.Fatal("Expected a GUESSED broadcast")
	}
	var winner models.Player
	decodePayload(t, guessed.data, &winner)
	if winner.PlayerID != "p2" {
		t.Errorf("Expected p2 in the GUESSED event, got %s", winner.PlayerID)
	}

	// Last non-drawer guessed, so the round ends immediately.
	end, ok := te.notifier.lastOf(network.MsgTypeTurnEnded)
	if !ok {
		t.Fatal("Expected TURN_END after the last guesser succeeded")
	}
	var payload turnEndedPayload
	decodePayload(t, end.data, &payload)
	if payload.Reason != models.ReasonAllGuessed {
		t.Errorf("Expected reason ALL_GUESSED, got %d", payload.Reason)
	}

	room := te.room(t, roomID)
	guesser := room.FindPlayer("p2")
	if guesser.Score != 190 {
		t.Errorf("Expected guesser score 190 (200 - 10s), got %d", guesser.Score)
	}
	// Drawer: 10 base + 1 guesser * (200/1) * 1.1 = 230, under the 250 cap.
	drawer := room.FindPlayer("p1")
	if drawer.Score != 230 {
		t.Errorf("Expected drawer score 230, got %d", drawer.Score)
	}
}

func TestGuess_WrongGuessIsChat(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 2)
	ctx := context.Background()

	startDrawingPhase(t, te, roomID, "apple")

	if err := te.engine.Guess(ctx, roomID, "p2", "pear"); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}

	chat, ok := te.notifier.lastOf(network.MsgTypeGuessChat)
	if !ok {
		t.Fatal("Expected a wrong guess to be relayed as chat")
	}
	var payload guessChatPayload
	decodePayload(t, chat.data, &payload)
	if payload.Guess != "pear" || payload.Player.PlayerID != "p2" {
		t.Errorf("Unexpected chat payload: %+v", payload)
	}

	room := te.room(t, roomID)
	if room.FindPlayer("p2").Guessed {
		t.Error("Wrong guess must not mark the player as guessed")
	}
}

func TestGuess_DrawerCannotGuessOwnWord(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 3)
	ctx := context.Background()

	startDrawingPhase(t, te, roomID, "apple")

	if err := te.engine.Guess(ctx, roomID, "p1", "apple"); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}

	room := te.room(t, roomID)
	if room.FindPlayer("p1").Guessed {
		t.Error("The drawer must never count as a guesser")
	}
	if room.GameState.RoomState != models.StateDrawing {
		t.Errorf("Round should still be running, got state %s", room.GameState.RoomState)
	}
}

func TestGuess_RepeatGuessIsChat(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 3)
	ctx := context.Background()

	startDrawingPhase(t, te, roomID, "apple")

	if err := te.engine.Guess(ctx, roomID, "p2", "apple"); err != nil {
		t.Fatalf("First guess failed: %v", err)
	}
	before := len(te.notifier.eventsOf(network.MsgTypeGuessed))

	if err := te.engine.Guess(ctx, roomID, "p2", "apple"); err != nil {
		t.Fatalf("Second guess failed: %v", err)
	}
	after := len(te.notifier.eventsOf(network.MsgTypeGuessed))
	if after != before {
		t.Error("A repeat guess must not produce another GUESSED event")
	}
}

func TestEndRound_NoPointsWhenNobodyGuessed(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 2)

	startDrawingPhase(t, te, roomID, "apple")
	te.engine.drawingTimeUp(roomID)

	room := te.room(t, roomID)
	for _, p := range room.Players {
		if p.Score != 0 {
			t.Errorf("Expected no points without guesses, %s has %d", p.PlayerID, p.Score)
		}
	}
}

func TestSendHint_RevealsLettersExceptDrawer(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 2)

	startDrawingPhase(t, te, roomID, "apple")

	te.engine.sendHint(roomID)

	hint, ok := te.notifier.lastOf(network.MsgTypeGuessHint)
	if !ok {
		t.Fatal("Expected a GUESS_HINT broadcast")
	}
	if hint.kind != "except" || hint.except != "p1" {
		t.Errorf("Hints must exclude the drawer, got %+v", hint)
	}
	var letter models.HintLetter
	decodePayload(t, hint.data, &letter)
	if letter.Index < 0 || letter.Index >= 5 {
		t.Errorf("Hint index out of range: %d", letter.Index)
	}
	if letter.Letter != string([]rune("apple")[letter.Index]) {
		t.Errorf("Hint letter %q does not match word position %d", letter.Letter, letter.Index)
	}

	// Default allowance is two hints; a third firing must do nothing.
	te.engine.sendHint(roomID)
	te.engine.sendHint(roomID)
	if got := len(te.notifier.eventsOf(network.MsgTypeGuessHint)); got != 2 {
		t.Errorf("Expected hint count capped at 2, got %d broadcasts", got)
	}

	room := te.room(t, roomID)
	if len(room.GameState.HintLetters) != 2 {
		t.Errorf("Expected 2 stored hints, got %d", len(room.GameState.HintLetters))
	}
}

func TestSendHint_NeverRevealsWholeWord(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 2)

	// Two graphemes: at most one may ever be revealed no matter the allowance.
	startDrawingPhase(t, te, roomID, "ab")

	te.engine.sendHint(roomID)
	te.engine.sendHint(roomID)

	room := te.room(t, roomID)
	if len(room.GameState.HintLetters) != 1 {
		t.Errorf("Expected at most 1 hint for a 2-letter word, got %d", len(room.GameState.HintLetters))
	}
}

func TestReact_OncePerRoundAndNeverDrawer(t *testing.T) {
	te := newTestEngine(t)
	roomID := te.newRoomWithPlayers(t, 3)
	ctx := context.Background()

	startDrawingPhase(t, te, roomID, "apple")

	if err := te.engine.React(ctx, roomID, "p1", "like"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if len(te.notifier.eventsOf(network.MsgTypeReactionEvent)) != 0 {
		t.Error("The drawer must not be able to react")
	}

	if err := te.engine.React(ctx, roomID, "p2", "like"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if err := te.engine.React(ctx, roomID, "p2", "dislike"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if got := len(te.notifier.eventsOf(network.MsgTypeReactionEvent)); got != 1 {
		t.Errorf("Expected one reaction per player per round, got %d", got)
	}

	if err := te.engine.React(ctx, roomID, "p3", "shrug"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if got := len(te.notifier.eventsOf(network.MsgTypeReactionEvent)); got != 1 {
		t.Errorf("Unknown reaction types must be dropped, got %d events", got)
	}
}
