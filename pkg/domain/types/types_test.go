package types_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

func TestPalette(t *testing.T) {
	t.Run("default palette has ten valid hues", func(t *testing.T) {
		gt.A(t, types.DefaultPalette).Length(10)
		gt.NoError(t, types.DefaultPalette.Validate())
	})

	t.Run("Next wraps around", func(t *testing.T) {
		p := types.Palette{"#000000", "#111111", "#222222"}
		gt.Value(t, p.Next(0)).Equal(types.Color("#000000"))
		gt.Value(t, p.Next(4)).Equal(types.Color("#111111"))
		gt.Value(t, p.Next(-2)).Equal(types.Color("#222222"))
	})

	t.Run("empty palette falls back to default", func(t *testing.T) {
		var p types.Palette
		gt.Value(t, p.Next(0)).Equal(types.DefaultPalette[0])
	})

	t.Run("Random picks a palette member", func(t *testing.T) {
		p := types.Palette{"#000000", "#111111"}
		for range 20 {
			c := p.Random()
			gt.Bool(t, c == "#000000" || c == "#111111").True()
		}
	})

	t.Run("invalid colors are rejected", func(t *testing.T) {
		gt.Error(t, types.Color("red").Validate())
		gt.Error(t, types.Color("#12345").Validate())
		gt.Error(t, types.Palette{"#ffffff", "blue"}.Validate())
	})
}

func TestParseDate(t *testing.T) {
	t.Run("calendar date", func(t *testing.T) {
		d, err := types.ParseDate("2023-10-05")
		gt.NoError(t, err).Required()
		gt.Value(t, d).Equal(time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC))
	})

	t.Run("timestamp is truncated to its date", func(t *testing.T) {
		d, err := types.ParseDate("2023-10-05T18:30:00Z")
		gt.NoError(t, err).Required()
		gt.Value(t, types.FormatDate(d)).Equal("2023-10-05")
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := types.ParseDate("next tuesday")
		gt.Error(t, err)
	})
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	gt.Value(t, types.DaysBetween(a, a.AddDate(0, 0, 4))).Equal(4)
	gt.Value(t, types.DaysBetween(a, a.Add(47*time.Hour))).Equal(1)
	gt.Value(t, types.DaysBetween(a.AddDate(0, 0, 3), a)).Equal(-3)
}

func TestParseViewMode(t *testing.T) {
	mode, err := types.ParseViewMode("")
	gt.NoError(t, err)
	gt.Value(t, mode).Equal(types.ViewModeTable)

	mode, err = types.ParseViewMode("gantt")
	gt.NoError(t, err)
	gt.Value(t, mode).Equal(types.ViewModeGantt)

	_, err = types.ParseViewMode("kanban")
	gt.Error(t, err)
}
