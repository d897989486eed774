// game/settings.go
package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
)

type settingChangedPayload struct {
	Setting string      `json:"setting"`
	Value   interface{} `json:"value"`
}

// ChangeSetting updates one room setting by key. Values arrive as raw JSON
// and are decoded per key; custom-word quota rules keep onlyCustomWords,
// players and customWords consistent with each other.
func (e *Engine) ChangeSetting(ctx context.Context, roomID, callerID, setting string, value json.RawMessage) error {
	return e.withRoom(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.FindPlayer(callerID) == nil {
			return nil
		}

		var applied interface{}
		switch setting {
		case "players":
			var n int
			if err := json.Unmarshal(value, &n); err != nil {
				return fmt.Errorf("%w: players must be a number", ErrInvalidSetting)
			}
			if n < models.MinRoomPlayers || n > models.MaxRoomPlayers {
				return fmt.Errorf("%w: players must be between %d and %d", ErrInvalidSetting, models.MinRoomPlayers, models.MaxRoomPlayers)
			}
			if room.Settings.OnlyCustomWords {
				if err := requireCustomWords(len(room.Settings.CustomWords), n); err != nil {
					return err
				}
			}
			room.Settings.Players = n
			applied = n

		case "hints":
			var n int
			if err := json.Unmarshal(value, &n); err != nil {
				return fmt.Errorf("%w: hints must be a number", ErrInvalidSetting)
			}
			if n < models.MinHints || n > models.MaxHints {
				return fmt.Errorf("%w: hints must be between %d and %d", ErrInvalidSetting, models.MinHints, models.MaxHints)
			}
			room.Settings.Hints = n
			applied = n

		case "language":
			var l models.Language
			if err := json.Unmarshal(value, &l); err != nil {
				return fmt.Errorf("%w: language must be a string", ErrInvalidSetting)
			}
			room.Settings.Language = models.ResolveLanguage(l)
			applied = room.Settings.Language

		case "onlyCustomWords":
			var enabled bool
			if err := json.Unmarshal(value, &enabled); err != nil {
				return fmt.Errorf("%w: onlyCustomWords must be a boolean", ErrInvalidSetting)
			}
			if enabled {
				if err := requireCustomWords(len(room.Settings.CustomWords), room.Settings.Players); err != nil {
					return err
				}
			}
			room.Settings.OnlyCustomWords = enabled
			applied = enabled

		case "customWords":
			var list []string
			if err := json.Unmarshal(value, &list); err != nil {
				return fmt.Errorf("%w: customWords must be a string array", ErrInvalidSetting)
			}
			if room.Settings.OnlyCustomWords {
				if err := requireCustomWords(len(list), room.Settings.Players); err != nil {
					return err
				}
			}
			room.Settings.CustomWords = list
			applied = list

		default:
			return fmt.Errorf("%w: unknown setting %q", ErrInvalidSetting, setting)
		}

		if err := e.save(ctx, room); err != nil {
			return err
		}
		e.emitRoom(roomID, network.MsgTypeSettingsChanged, settingChangedPayload{
			Setting: setting,
			Value:   applied,
		})
		return nil
	})
}

func requireCustomWords(have, players int) error {
	required := players * models.CustomWordsPerPlayer
	if required < 0 {
		required = 0
	}
	if have < required {
		return fmt.Errorf("%w: need at least %d custom words", ErrInvalidSetting, required)
	}
	return nil
}
