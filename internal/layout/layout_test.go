// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	m := NewManager(s)
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return m
}

func TestDefaultLayout(t *testing.T) {
	d := Default()
	assert.Equal(t, DefaultID, d.ID)
	assert.True(t, d.IsDefault)
	require.Len(t, d.Widgets, 6)
	assert.Equal(t, types.WidgetAllStudies, d.Widgets[5].Type)
	assert.Equal(t, 2, d.Widgets[5].Size.Width)
	for _, w := range d.Widgets {
		assert.True(t, ValidWidgetType(w.Type), w.ID)
	}
}

func TestListStartsWithDefault(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	got, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, DefaultID, got[0].ID)

	a, err := m.Create(ctx, "Oncology")
	require.NoError(t, err)
	b, err := m.Create(ctx, "Sponsors")
	require.NoError(t, err)

	got, err = m.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{DefaultID, a.ID, b.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestCreate(t *testing.T) {
	m := newManager(t)
	l, err := m.Create(context.Background(), "  Mine ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l.ID, "layout-"))
	assert.Equal(t, "Mine", l.Name)
	assert.False(t, l.IsDefault)
	assert.Empty(t, l.Widgets)
	assert.Equal(t, l.CreatedAt, l.UpdatedAt)

	_, err = m.Create(context.Background(), " ")
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestDefaultIsProtected(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	assert.True(t, errors.Is(m.Delete(ctx, DefaultID), ErrDefaultLayout))

	name := "renamed"
	_, err := m.Update(ctx, DefaultID, Update{Name: &name})
	assert.True(t, errors.Is(err, ErrDefaultLayout))

	_, err = m.AddWidget(ctx, DefaultID, types.ChartWidget{Type: types.WidgetRegion})
	assert.True(t, errors.Is(err, ErrDefaultLayout))

	got, err := m.Get(ctx, DefaultID)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestDelete(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	l, err := m.Create(ctx, "tmp")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, l.ID))
	_, err = m.Get(ctx, l.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(m.Delete(ctx, l.ID), ErrNotFound))
}

func TestUpdate(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	l, err := m.Create(ctx, "before")
	require.NoError(t, err)

	name := "after"
	widgets := []types.ChartWidget{{
		ID: "w1", Type: types.WidgetStartDate,
		Size: types.Size{Width: 2, Height: 1},
	}}
	got, err := m.Update(ctx, l.ID, Update{Name: &name, Widgets: &widgets})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
	assert.Equal(t, widgets, got.Widgets)
	assert.True(t, got.UpdatedAt.After(l.UpdatedAt))

	bad := []types.ChartWidget{{ID: "w2", Type: "PieChart", Size: types.Size{Width: 1, Height: 1}}}
	_, err = m.Update(ctx, l.ID, Update{Widgets: &bad})
	assert.Error(t, err)

	reloaded, err := m.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", reloaded.Name)
}

func TestWidgets(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	l, err := m.Create(ctx, "widgets")
	require.NoError(t, err)

	l, err = m.AddWidget(ctx, l.ID, types.ChartWidget{ID: "region", Type: types.WidgetRegion})
	require.NoError(t, err)
	require.Len(t, l.Widgets, 1)
	assert.Equal(t, types.Size{Width: 1, Height: 1}, l.Widgets[0].Size)

	l, err = m.AddWidget(ctx, l.ID, types.ChartWidget{Type: types.WidgetPhaseClass})
	require.NoError(t, err)
	require.Len(t, l.Widgets, 2)
	assert.NotEmpty(t, l.Widgets[1].ID)

	_, err = m.AddWidget(ctx, l.ID, types.ChartWidget{ID: "region", Type: types.WidgetRegion})
	assert.Error(t, err, "duplicate widget id")

	_, err = m.AddWidget(ctx, l.ID, types.ChartWidget{Type: "Unknown"})
	assert.True(t, errors.Is(err, ErrInvalid))

	pos := types.Position{X: 1, Y: 2}
	l, err = m.UpdateWidget(ctx, l.ID, "region", WidgetUpdate{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, pos, l.Widgets[0].Position)

	_, err = m.UpdateWidget(ctx, l.ID, "missing", WidgetUpdate{Position: &pos})
	assert.True(t, errors.Is(err, ErrNotFound))

	l, err = m.RemoveWidget(ctx, l.ID, "region")
	require.NoError(t, err)
	require.Len(t, l.Widgets, 1)
	assert.Equal(t, types.WidgetPhaseClass, l.Widgets[0].Type)

	_, err = m.RemoveWidget(ctx, l.ID, "region")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = m.RemoveWidget(ctx, "layout-nope", "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}
