// game/strokes.go
package game

import (
	"context"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
)

// DrawActionKind tags the draw action variants on the wire.
type DrawActionKind string

const (
	DrawStart DrawActionKind = "START"
	DrawPoint DrawActionKind = "POINT"
	DrawEnd   DrawActionKind = "END"
	DrawClear DrawActionKind = "CLEAR"
	DrawUndo  DrawActionKind = "UNDO"
	DrawSync  DrawActionKind = "SYNC"
)

// DrawAction is one drawing command from a client. Which fields are
// meaningful depends on Kind: START uses StrokeID/Color/LineWidth, POINT
// adds X/Y/End, END and UNDO need only StrokeID, CLEAR and SYNC carry
// nothing extra.
type DrawAction struct {
	Kind      DrawActionKind `json:"kind"`
	StrokeID  string         `json:"strokeId,omitempty"`
	Color     string         `json:"color,omitempty"`
	LineWidth float64        `json:"lineWidth,omitempty"`
	X         float64        `json:"x,omitempty"`
	Y         float64        `json:"y,omitempty"`
	End       bool           `json:"end,omitempty"`
}

// HandleDrawAction applies one drawing command. Only the current drawer may
// mutate the canvas; SYNC is a read available to any room member. Strokes
// being drawn live in the runtime buffer and are committed to the room on
// END so a crash mid-stroke loses only the open stroke.
func (e *Engine) HandleDrawAction(ctx context.Context, roomID, playerID string, action DrawAction) error {
	return e.guarded(ctx, roomID, func(rt *roomRuntime, room *models.Room) error {
		if room.GameState.CurrentRound == 0 {
			return nil
		}

		if action.Kind == DrawSync {
			strokes := room.GameState.Strokes
			if strokes == nil {
				strokes = []models.Stroke{}
			}
			e.emitPlayer(playerID, network.MsgTypeDrawFull, strokes)
			return nil
		}

		drawer := e.currentDrawerOrEnd(ctx, rt, room)
		if drawer == nil {
			return nil
		}
		if drawer.PlayerID != playerID {
			return nil // mutations from non-drawers are dropped without reply
		}

		switch action.Kind {
		case DrawStart:
			if action.StrokeID == "" {
				return nil
			}
			rt.strokes[action.StrokeID] = &models.Stroke{
				StrokeID:  action.StrokeID,
				Color:     action.Color,
				LineWidth: action.LineWidth,
				Points:    []models.DrawPoint{},
				PlayerID:  playerID,
			}

		case DrawPoint:
			stroke, exists := rt.strokes[action.StrokeID]
			if !exists {
				return nil
			}
			point := models.DrawPoint{
				X:         action.X,
				Y:         action.Y,
				Color:     action.Color,
				LineWidth: action.LineWidth,
				End:       action.End,
				StrokeID:  action.StrokeID,
				PlayerID:  playerID,
			}
			stroke.Points = append(stroke.Points, point)
			e.emitRoomExcept(roomID, playerID, network.MsgTypeDrawData, point)

		case DrawEnd:
			stroke, exists := rt.strokes[action.StrokeID]
			if !exists {
				return nil
			}
			if len(stroke.Points) > 0 {
				stroke.Points[len(stroke.Points)-1].End = true
			}
			room.GameState.Strokes = append(room.GameState.Strokes, *stroke)
			delete(rt.strokes, action.StrokeID)
			e.emitRoomExcept(roomID, playerID, network.MsgTypeDrawFull, room.GameState.Strokes)

		case DrawClear:
			rt.strokes = make(map[string]*models.Stroke)
			room.GameState.Strokes = []models.Stroke{}
			e.emitRoomExcept(roomID, playerID, network.MsgTypeClearDraw, nil)

		case DrawUndo:
			if len(room.GameState.Strokes) == 0 {
				return nil
			}
			last := room.GameState.Strokes[len(room.GameState.Strokes)-1]
			room.GameState.Strokes = room.GameState.Strokes[:len(room.GameState.Strokes)-1]
			e.emitRoom(roomID, network.MsgTypeUndoDraw, last)

		default:
			return nil
		}

		// Every accepted action re-persists the room, which also refreshes
		// its TTL while drawing is active.
		return e.save(ctx, room)
	})
}
