package ws

import (
	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/session"
)

type MessageType string

const (
	MsgSnapshot            MessageType = "snapshot"
	MsgProfile             MessageType = "profile"
	MsgReward              MessageType = "reward"
	MsgLevelUp             MessageType = "level_up"
	MsgAchievementUnlocked MessageType = "achievement_unlocked"
	MsgSession             MessageType = "session"
	MsgError               MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

type SnapshotPayload struct {
	Profile      *gamification.Profile            `json:"profile"`
	Level        gamification.LevelProgress       `json:"level"`
	Achievements gamification.AchievementProgress `json:"achievements"`
	Session      app.SessionInfo                  `json:"session"`
}

type RewardPayload struct {
	ChallengeID string                       `json:"challengeId"`
	Breakdown   gamification.RewardBreakdown `json:"breakdown"`
	Profile     *gamification.Profile        `json:"profile"`
}

type SessionPayload struct {
	Event      string          `json:"event"`
	Attempt    session.Attempt `json:"attempt"`
	Multiplier float64         `json:"multiplier"`
	OpenCount  int             `json:"openCount"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// AchievementPayload is the wire form of an achievement; the condition
// function never leaves the process.
type AchievementPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
	Group       string `json:"group"`
	Unlocked    bool   `json:"unlocked"`
}

func achievementPayload(a gamification.Achievement, unlocked bool) AchievementPayload {
	return AchievementPayload{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Tier:        string(a.Tier),
		Group:       string(a.Group),
		Unlocked:    unlocked,
	}
}

// REST bodies.

type RenameRequest struct {
	Username string `json:"username"`
}

type SubmitRequest struct {
	ElapsedSeconds int `json:"elapsedSeconds,omitempty"`
}

type SubmitResponse struct {
	app.SubmitResult
	Unlocked []AchievementPayload `json:"unlocked"`
}

type OpenResponse struct {
	Challenge   catalog.Challenge `json:"challenge"`
	Attempt     session.Attempt   `json:"attempt"`
	StarterCode string            `json:"starterCode"`
}

type AchievementsResponse struct {
	Achievements []AchievementPayload             `json:"achievements"`
	Progress     gamification.AchievementProgress `json:"progress"`
}

type ChatRequest struct {
	Message     string `json:"message"`
	ChallengeID string `json:"challengeId,omitempty"`
}

type TerminalRequest struct {
	Command string `json:"command"`
}
