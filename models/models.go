// models/models.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Language 游戏词库语言
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageAmharic Language = "Amharic"
)

// ResolveLanguage falls back to English for unknown values.
func ResolveLanguage(l Language) Language {
	switch l {
	case LanguageEnglish, LanguageAmharic:
		return l
	default:
		return LanguageEnglish
	}
}

// RoomState 房间阶段
type RoomState string

const (
	StateNotStarted   RoomState = "NOT_STARTED"
	StateChoosingWord RoomState = "CHOOSING_WORD"
	StateDrawing      RoomState = "DRAWING"
	StateGuessed      RoomState = "GUESSED"
	StateWinner       RoomState = "WINNER"
)

// RoundEndReason 回合结束原因
type RoundEndReason int

const (
	ReasonAllGuessed RoundEndReason = iota + 1
	ReasonTimeUp
	ReasonLeft
)

// Player 玩家数据。PlayerID is the transport connection id and changes on
// reconnect; ClientID is the stable device id used to reclaim the slot.
type Player struct {
	PlayerID  string     `json:"playerId"`
	ClientID  string     `json:"clientId,omitempty"`
	Name      string     `json:"name"`
	Score     int        `json:"score"`
	Guessed   bool       `json:"guessed"`
	GuessedAt *time.Time `json:"guessedAt"`
	HasDrawn  bool       `json:"hasDrawn"`
	JoinedAt  int64      `json:"joinedAt"` // epoch ms
}

// DrawPoint 单个画笔采样点
type DrawPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
	End       bool    `json:"end"`
	StrokeID  string  `json:"strokeId,omitempty"`
	PlayerID  string  `json:"playerId,omitempty"`
}

// Stroke 一笔完整的绘画动作
type Stroke struct {
	StrokeID  string      `json:"strokeId"`
	Color     string      `json:"color,omitempty"`
	LineWidth float64     `json:"lineWidth,omitempty"`
	Points    []DrawPoint `json:"points"`
	PlayerID  string      `json:"playerId,omitempty"`
}

// HintLetter 已揭示的提示字符
type HintLetter struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
}

// GameState 一局游戏的当前状态
type GameState struct {
	CurrentRound    int          `json:"currentRound"`
	Strokes         []Stroke     `json:"strokes"`
	GuessedWords    []string     `json:"guessedWords"`
	Word            string       `json:"word"`
	CurrentDrawerID string       `json:"currentDrawerId"`
	RoundOrder      []string     `json:"roundOrder"`
	RoundStartedAt  int64        `json:"roundStartedAt"` // epoch ms
	HintLetters     []HintLetter `json:"hintLetters"`
	RoomState       RoomState    `json:"roomState"`
	TimerStartedAt  time.Time    `json:"timerStartedAt"`
	PhaseEndsAt     int64        `json:"phaseEndsAt,omitempty"` // epoch ms
}

// Settings 房间设置
type Settings struct {
	Players         int      `json:"players"`
	OnlyCustomWords bool     `json:"onlyCustomWords"`
	CustomWords     []string `json:"customWords"`
	Language        Language `json:"language"`
	Hints           int      `json:"hints"`
}

const (
	MinRoomPlayers = 2
	MaxRoomPlayers = 8
	MinHints       = 0
	MaxHints       = 2

	// Custom words required per player slot when onlyCustomWords is on.
	CustomWordsPerPlayer = 9
)

// DefaultSettings 默认房间设置
func DefaultSettings(language Language) Settings {
	return Settings{
		Players:         MaxRoomPlayers,
		OnlyCustomWords: false,
		CustomWords:     []string{},
		Language:        ResolveLanguage(language),
		Hints:           MaxHints,
	}
}

// KickVote tracks votes registered against one target player. It serializes
// as the legacy [target, [voters]] tuple so stored rooms stay readable.
type KickVote struct {
	TargetID string
	Voters   []string
}

func (v KickVote) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{v.TargetID, v.Voters})
}

func (v *KickVote) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("kick vote: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &v.TargetID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &v.Voters)
}

// Room 房间聚合根，整体序列化后存入房间存储
type Room struct {
	RoomID      string     `json:"roomId"`
	Creator     string     `json:"creator"`
	Players     []*Player  `json:"players"`
	GameState   GameState  `json:"gameState"`
	Settings    Settings   `json:"settings"`
	VoteKickers []KickVote `json:"vote_kickers"`
}

// NewRoom creates an empty, not-started room owned by creatorID.
func NewRoom(roomID, creatorID string, language Language, now time.Time) *Room {
	return &Room{
		RoomID:  roomID,
		Creator: creatorID,
		Players: []*Player{},
		GameState: GameState{
			CurrentRound:   0,
			Strokes:        []Stroke{},
			GuessedWords:   []string{},
			Word:           "",
			RoundOrder:     []string{},
			HintLetters:    []HintLetter{},
			RoomState:      StateNotStarted,
			TimerStartedAt: now,
		},
		Settings:    DefaultSettings(language),
		VoteKickers: []KickVote{},
	}
}

// FindPlayer returns the player with the given connection id.
func (r *Room) FindPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// FindPlayerByClientID returns the player with the given stable client id.
func (r *Room) FindPlayerByClientID(clientID string) *Player {
	if clientID == "" {
		return nil
	}
	for _, p := range r.Players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

// CurrentDrawer returns the current drawer, or nil if there is none or the
// recorded drawer already left the room.
func (r *Room) CurrentDrawer() *Player {
	if r.GameState.CurrentDrawerID == "" {
		return nil
	}
	return r.FindPlayer(r.GameState.CurrentDrawerID)
}

// RemovePlayer drops the player from the roster and the round order.
func (r *Room) RemovePlayer(playerID string) {
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.PlayerID != playerID {
			kept = append(kept, p)
		}
	}
	r.Players = kept
	r.RemoveFromRoundOrder(playerID)
}

// RemoveFromRoundOrder drops the player id from this round's drawer order.
func (r *Room) RemoveFromRoundOrder(playerID string) {
	kept := r.GameState.RoundOrder[:0]
	for _, id := range r.GameState.RoundOrder {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	r.GameState.RoundOrder = kept
}

// MidGameState is the synthetic snapshot sent to a client joining while a
// round is in progress. Word carries the grapheme-length mask, never the
// plaintext word.
type MidGameState struct {
	CurrentRound    int          `json:"currentRound"`
	Strokes         []Stroke     `json:"strokes"`
	GuessedWords    []string     `json:"guessedWords"`
	CurrentDrawerID string       `json:"currentDrawerId"`
	RoundOrder      []string     `json:"roundOrder"`
	RoundStartedAt  int64        `json:"roundStartedAt"`
	HintLetters     []HintLetter `json:"hintLetters"`
	RoomState       RoomState    `json:"roomState"`
	TimerStartedAt  time.Time    `json:"timerStartedAt"`
	PhaseEndsAt     int64        `json:"phaseEndsAt,omitempty"`
	Word            []int        `json:"word"`
	Time            int          `json:"time"`
}
