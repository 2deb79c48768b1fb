// Package client provides WebSocket and HTTP clients for the arsenal API.
// Wire types come from the server packages; the envelope is decoded lazily.
package client

import (
	"encoding/json"

	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/ws"
)

// envelope is a WebSocket message with its payload still raw.
type envelope struct {
	Type    ws.MessageType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the WebSocket connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// WSSnapshotMsg delivers the state a new connection starts from.
type WSSnapshotMsg struct{ Payload ws.SnapshotPayload }

// WSProfileMsg delivers a changed profile.
type WSProfileMsg struct{ Profile *gamification.Profile }

// WSRewardMsg is sent when a solve credits XP.
type WSRewardMsg struct{ Payload ws.RewardPayload }

// WSLevelUpMsg is sent when the level rises.
type WSLevelUpMsg struct{ Progress gamification.Progress }

// WSAchievementMsg is sent when an achievement unlocks.
type WSAchievementMsg struct{ Payload ws.AchievementPayload }

// WSSessionMsg reports a session context change.
type WSSessionMsg struct{ Payload ws.SessionPayload }

// WSErrorMsg wraps a server-side error.
type WSErrorMsg struct{ Message string }

func decodeMessage(data []byte) any {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	switch env.Type {
	case ws.MsgSnapshot:
		var p ws.SnapshotPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSSnapshotMsg{Payload: p}
		}
	case ws.MsgProfile:
		var p gamification.Profile
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSProfileMsg{Profile: &p}
		}
	case ws.MsgReward:
		var p ws.RewardPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSRewardMsg{Payload: p}
		}
	case ws.MsgLevelUp:
		var p gamification.Progress
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSLevelUpMsg{Progress: p}
		}
	case ws.MsgAchievementUnlocked:
		var p ws.AchievementPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSAchievementMsg{Payload: p}
		}
	case ws.MsgSession:
		var p ws.SessionPayload
		if json.Unmarshal(env.Payload, &p) == nil {
			return WSSessionMsg{Payload: p}
		}
	case ws.MsgError:
		var p ws.ErrorPayload
		_ = json.Unmarshal(env.Payload, &p)
		return WSErrorMsg{Message: p.Message}
	}
	return nil
}
