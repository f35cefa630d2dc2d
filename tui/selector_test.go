package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelector_Wraps(t *testing.T) {
	s := newSelector("Hubs")
	s.Load([]Option{{Label: "a", Value: "a"}, {Label: "b", Value: "b"}, {Label: "c", Value: "c"}})

	s.MoveUp()
	require.Equal(t, 2, s.Cursor)
	s.MoveDown()
	require.Equal(t, 0, s.Cursor)

	option, ok := s.Highlighted()
	require.True(t, ok)
	require.Equal(t, "a", option.Value)
}

func TestSelector_ResetDisables(t *testing.T) {
	s := newSelector("Hubs")
	s.Load([]Option{{Label: "a", Value: "a"}})
	s.Chosen = 0

	choice, ok := s.Choice()
	require.True(t, ok)
	require.Equal(t, "a", choice.Value)

	s.Reset()
	require.False(t, s.Enabled)
	_, ok = s.Highlighted()
	require.False(t, ok)
	_, ok = s.Choice()
	require.False(t, ok)

	// Moving an empty selector is a no-op.
	s.MoveDown()
	require.Equal(t, 0, s.Cursor)
}

func TestSelector_Render(t *testing.T) {
	s := newSelector("Edge devices")
	require.Contains(t, s.Render(DefaultTheme, 40, 5, false), "Edge devices")

	s.Load(nil)
	require.Contains(t, s.Render(DefaultTheme, 40, 5, true), "(none)")

	s.Load([]Option{{Label: "d1", Value: "d1"}, {Label: "d3", Value: "d3"}})
	out := s.Render(DefaultTheme, 40, 5, true)
	require.Contains(t, out, "d1")
	require.Contains(t, out, "d3")
}
