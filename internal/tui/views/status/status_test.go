package status

import (
	"strings"
	"testing"
	"time"

	"github.com/code-arsenal/arsenal/internal/gamification"
)

func TestSetLevel_SpringSettlesOnTarget(t *testing.T) {
	m := New()
	cmd := m.SetLevel(gamification.LevelProgress{Level: 2, Progress: 100, Required: 200, Percentage: 50})
	if cmd == nil {
		t.Fatal("retargeting should schedule a frame")
	}

	for i := 0; i < fps*5 && m.Animating(); i++ {
		m, _ = m.Update(FrameMsg{})
	}
	if m.Animating() {
		t.Fatalf("spring did not settle: shown=%v velocity=%v", m.shown, m.velocity)
	}
	if m.shown != 50 {
		t.Errorf("shown = %v, want 50", m.shown)
	}
}

func TestSetLevel_NoFrameWhenSettled(t *testing.T) {
	m := New()
	if cmd := m.SetLevel(gamification.LevelProgress{Level: 1, Required: 100}); cmd != nil {
		t.Error("a bar already at its target should not animate")
	}
}

func TestSetLevel_LevelChangeRestartsBar(t *testing.T) {
	m := New()
	m.SetLevel(gamification.LevelProgress{Level: 2, Percentage: 90})
	m.shown = 90

	m.SetLevel(gamification.LevelProgress{Level: 3, Percentage: 10})
	if m.shown != 0 {
		t.Errorf("shown = %v, want 0 after level change", m.shown)
	}
}

func TestUpdate_IgnoresOtherMessages(t *testing.T) {
	m := New()
	m.target = 80
	got, cmd := m.Update("tick")
	if cmd != nil || got.shown != 0 {
		t.Error("non-frame messages should not advance the spring")
	}
}

func TestView(t *testing.T) {
	m := New()
	m.Width = 100
	m.Connected = true
	p := gamification.NewProfile(time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))
	p.Username = "ada"
	p.Streak = 4
	p.TotalXP = 150
	m.SetProfile(p)
	m.Multiplier = 1.2

	v := m.View()
	for _, want := range []string{"Connected", "ada", "Lv 2", "50/200 XP", "4", "x1.2 XP"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestView_MaxLevel(t *testing.T) {
	m := New()
	m.Level = gamification.LevelProgress{Level: 100, Max: true}
	if !strings.Contains(m.View(), "MAX LEVEL") {
		t.Error("max level should replace the bar")
	}
}
