package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/session"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ErrTooManyClients is returned by AddClient when maxConns is reached.
var ErrTooManyClients = errors.New("too many websocket clients")

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster fans engine events out to every connected client. A client
// whose buffer is full is disconnected rather than allowed to stall others.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	maxConns int
	snapshot func() SnapshotPayload
	onCount  func(int)
	log      *slog.Logger
}

// NewBroadcaster returns an empty broadcaster. maxConns <= 0 means
// unlimited.
func NewBroadcaster(maxConns int, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients:  make(map[*client]bool),
		maxConns: maxConns,
		log:      logger,
	}
}

// Snapshot is the state a new WebSocket client starts from.
func Snapshot(a *app.App) SnapshotPayload {
	p := a.Tracker.Profile()
	_, progress := a.Tracker.Achievements()
	return SnapshotPayload{
		Profile:      p,
		Level:        gamification.NextLevelProgress(p.TotalXP),
		Achievements: progress,
		Session:      a.SessionInfo(),
	}
}

// OnClientCount registers fn to be told the client count after every
// connect and disconnect.
func (b *Broadcaster) OnClientCount(fn func(int)) { b.onCount = fn }

// Attach subscribes the broadcaster to a's tracker and session, and sends
// new clients a snapshot of a. Must be called before clients connect.
func (b *Broadcaster) Attach(a *app.App) {
	b.snapshot = func() SnapshotPayload { return Snapshot(a) }
	a.Tracker.OnReward(func(sub gamification.Submission, rb gamification.RewardBreakdown, p *gamification.Profile) {
		b.Publish(MsgReward, RewardPayload{ChallengeID: sub.ChallengeID, Breakdown: rb, Profile: p})
	})
	a.Tracker.OnLevelUp(func(prog gamification.Progress) {
		b.Publish(MsgLevelUp, prog)
	})
	a.Tracker.OnAchievement(func(ach gamification.Achievement) {
		b.Publish(MsgAchievementUnlocked, achievementPayload(ach, true))
	})
	a.Session.OnEvent(func(ev session.Event) {
		b.Publish(MsgSession, SessionPayload{
			Event:      ev.Type.String(),
			Attempt:    ev.Attempt,
			Multiplier: ev.Multiplier,
			OpenCount:  ev.OpenCount,
		})
	})
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) (*client, error) {
	var snap []byte
	if b.snapshot != nil {
		data, err := json.Marshal(WSMessage{Type: MsgSnapshot, Payload: b.snapshot()})
		if err != nil {
			b.log.Error("snapshot marshal failed", "error", err)
		}
		snap = data
	}

	b.mu.Lock()
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		b.mu.Unlock()
		return nil, ErrTooManyClients
	}
	c := newClient(conn)
	b.clients[c] = true
	if snap != nil {
		c.send <- snap // fresh buffer, cannot block
	}
	n := len(b.clients)
	b.mu.Unlock()

	b.countChanged(n)
	return c, nil
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	if ok {
		delete(b.clients, c)
		c.close()
	}
	n := len(b.clients)
	b.mu.Unlock()
	if ok {
		b.countChanged(n)
	}
}

// Publish sends one message to every client.
func (b *Broadcaster) Publish(t MessageType, payload any) {
	b.broadcast(WSMessage{Type: t, Payload: payload})
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("broadcast marshal failed", "type", msg.Type, "error", err)
		return
	}

	// Sends happen under the read lock so RemoveClient cannot close a
	// channel mid-send.
	var slow []*client
	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		b.log.Warn("ws client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	for c := range b.clients {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
	b.countChanged(0)
}

func (b *Broadcaster) countChanged(n int) {
	if b.onCount != nil {
		b.onCount(n)
	}
}
