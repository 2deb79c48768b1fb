package toast

import (
	"strings"
	"testing"

	"github.com/code-arsenal/arsenal/internal/tui/theme"
)

func TestPushAndExpire(t *testing.T) {
	m := New()
	if m.View() != "" {
		t.Error("empty stack should render nothing")
	}

	m.Push("+120 XP", theme.ColorXPFill)
	m.Push("LEVEL UP", theme.ColorGold)
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if v := m.View(); !strings.Contains(v, "+120 XP") || !strings.Contains(v, "LEVEL UP") {
		t.Errorf("View = %q", v)
	}

	m = m.Update(ExpireMsg{seq: 1})
	if m.Len() != 1 || !strings.Contains(m.View(), "LEVEL UP") {
		t.Errorf("oldest toast should expire first, got %q", m.View())
	}
	m = m.Update(ExpireMsg{seq: 2})
	if m.Len() != 0 {
		t.Errorf("Len = %d after newest expired", m.Len())
	}
}

func TestPush_Limit(t *testing.T) {
	m := New()
	for _, s := range []string{"a", "b", "c", "d"} {
		m.Push(s, theme.ColorGold)
	}
	if m.Len() != m.Limit {
		t.Errorf("Len = %d, want %d", m.Len(), m.Limit)
	}
	if m.items[0].text != "b" {
		t.Errorf("oldest kept = %q, want b", m.items[0].text)
	}
}
