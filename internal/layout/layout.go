// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout manages named dashboard layouts. Layouts are JSON
// documents in a key-value bucket; the built-in default layout is never
// stored and cannot be changed or deleted.
package layout

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const (
	// DefaultID is the id of the built-in layout.
	DefaultID = "default"

	bucket = "layouts"
)

var (
	// ErrNotFound is returned for unknown layout or widget ids.
	ErrNotFound = eris.New("layout: not found")

	// ErrDefaultLayout is returned when a change targets the default layout.
	ErrDefaultLayout = eris.New("layout: the default layout cannot be modified")

	// ErrInvalid wraps rejected names and widgets.
	ErrInvalid = eris.New("layout: invalid")
)

// KV is the storage a Manager needs. *store.Store satisfies it.
type KV interface {
	Put(ctx context.Context, bucket, key string, value []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) (bool, error)
	List(ctx context.Context, bucket string) ([][]byte, error)
}

// Update is a partial layout change. Nil fields are left unchanged.
type Update struct {
	Name    *string              `json:"name,omitempty"`
	Widgets *[]types.ChartWidget `json:"widgets,omitempty"`
}

// WidgetUpdate is a partial widget change. Nil fields are left unchanged.
type WidgetUpdate struct {
	Type     *types.WidgetType `json:"type,omitempty"`
	Position *types.Position   `json:"position,omitempty"`
	Size     *types.Size       `json:"size,omitempty"`
}

// Manager creates, edits and lists dashboard layouts.
type Manager struct {
	kv  KV
	now func() time.Time
}

// NewManager creates a Manager over kv.
func NewManager(kv KV) *Manager {
	return &Manager{kv: kv, now: func() time.Time { return time.Now().UTC() }}
}

// Default returns the built-in layout.
func Default() types.DashboardLayout {
	w := func(id string, t types.WidgetType, x, y, width int) types.ChartWidget {
		return types.ChartWidget{
			ID:       id,
			Type:     t,
			Position: types.Position{X: x, Y: y},
			Size:     types.Size{Width: width, Height: 1},
		}
	}
	return types.DashboardLayout{
		ID:        DefaultID,
		Name:      "Default Layout",
		IsDefault: true,
		Widgets: []types.ChartWidget{
			w("trial-count", types.WidgetTrialCount, 0, 0, 1),
			w("conditions-chart", types.WidgetConditions, 1, 0, 1),
			w("sponsors-chart", types.WidgetSponsors, 0, 1, 1),
			w("top-sponsors-chart", types.WidgetTopSponsors, 1, 1, 1),
			w("region-chart", types.WidgetRegion, 0, 2, 1),
			w("all-studies-table", types.WidgetAllStudies, 0, 3, 2),
		},
	}
}

// ValidWidgetType reports whether t is a known chart type.
func ValidWidgetType(t types.WidgetType) bool {
	switch t {
	case types.WidgetTrialCount, types.WidgetConditions, types.WidgetSponsors,
		types.WidgetTopSponsors, types.WidgetRegion, types.WidgetStartDate,
		types.WidgetAllStudies, types.WidgetPhaseClass, types.WidgetTherapeuticClass,
		types.WidgetTreatmentClass, types.WidgetPopulationClass, types.WidgetOverviewClass:
		return true
	}
	return false
}

// List returns the default layout followed by saved layouts in creation
// order.
func (m *Manager) List(ctx context.Context) ([]types.DashboardLayout, error) {
	raw, err := m.kv.List(ctx, bucket)
	if err != nil {
		return nil, err
	}
	saved := make([]types.DashboardLayout, 0, len(raw))
	for _, data := range raw {
		var l types.DashboardLayout
		if err := json.Unmarshal(data, &l); err != nil {
			zap.L().Warn("skipping unreadable layout", zap.Error(err))
			continue
		}
		saved = append(saved, l)
	}
	sort.SliceStable(saved, func(i, j int) bool {
		if !saved[i].CreatedAt.Equal(saved[j].CreatedAt) {
			return saved[i].CreatedAt.Before(saved[j].CreatedAt)
		}
		return saved[i].ID < saved[j].ID
	})
	return append([]types.DashboardLayout{Default()}, saved...), nil
}

// Get returns one layout.
func (m *Manager) Get(ctx context.Context, id string) (types.DashboardLayout, error) {
	if id == DefaultID {
		return Default(), nil
	}
	data, err := m.kv.Get(ctx, bucket, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.DashboardLayout{}, eris.Wrapf(ErrNotFound, "layout %q", id)
	}
	if err != nil {
		return types.DashboardLayout{}, err
	}
	var l types.DashboardLayout
	if err := json.Unmarshal(data, &l); err != nil {
		return types.DashboardLayout{}, eris.Wrapf(err, "layout: decode %q", id)
	}
	return l, nil
}

// Create saves a new empty layout.
func (m *Manager) Create(ctx context.Context, name string) (types.DashboardLayout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.DashboardLayout{}, eris.Wrap(ErrInvalid, "name is required")
	}
	now := m.now()
	l := types.DashboardLayout{
		ID:        "layout-" + uuid.NewString(),
		Name:      name,
		Widgets:   []types.ChartWidget{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.save(ctx, l); err != nil {
		return types.DashboardLayout{}, err
	}
	zap.L().Info("layout created", zap.String("id", l.ID), zap.String("name", name))
	return l, nil
}

// Update applies a partial change to a saved layout.
func (m *Manager) Update(ctx context.Context, id string, u Update) (types.DashboardLayout, error) {
	return m.modify(ctx, id, func(l *types.DashboardLayout) error {
		if u.Name != nil {
			name := strings.TrimSpace(*u.Name)
			if name == "" {
				return eris.Wrap(ErrInvalid, "name is required")
			}
			l.Name = name
		}
		if u.Widgets != nil {
			for _, w := range *u.Widgets {
				if err := validateWidget(w); err != nil {
					return err
				}
			}
			l.Widgets = append([]types.ChartWidget{}, *u.Widgets...)
		}
		return nil
	})
}

// Delete removes a saved layout.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == DefaultID {
		return ErrDefaultLayout
	}
	removed, err := m.kv.Delete(ctx, bucket, id)
	if err != nil {
		return err
	}
	if !removed {
		return eris.Wrapf(ErrNotFound, "layout %q", id)
	}
	zap.L().Info("layout deleted", zap.String("id", id))
	return nil
}

// AddWidget appends a widget. An empty widget id is generated.
func (m *Manager) AddWidget(ctx context.Context, layoutID string, w types.ChartWidget) (types.DashboardLayout, error) {
	if w.ID == "" {
		w.ID = strings.ToLower(string(w.Type)) + "-" + uuid.NewString()[:8]
	}
	if w.Size == (types.Size{}) {
		w.Size = types.Size{Width: 1, Height: 1}
	}
	if err := validateWidget(w); err != nil {
		return types.DashboardLayout{}, err
	}
	return m.modify(ctx, layoutID, func(l *types.DashboardLayout) error {
		for _, existing := range l.Widgets {
			if existing.ID == w.ID {
				return eris.Wrapf(ErrInvalid, "widget %q already exists", w.ID)
			}
		}
		l.Widgets = append(l.Widgets, w)
		return nil
	})
}

// RemoveWidget removes a widget by id.
func (m *Manager) RemoveWidget(ctx context.Context, layoutID, widgetID string) (types.DashboardLayout, error) {
	return m.modify(ctx, layoutID, func(l *types.DashboardLayout) error {
		kept := make([]types.ChartWidget, 0, len(l.Widgets))
		for _, w := range l.Widgets {
			if w.ID != widgetID {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(l.Widgets) {
			return eris.Wrapf(ErrNotFound, "widget %q", widgetID)
		}
		l.Widgets = kept
		return nil
	})
}

// UpdateWidget applies a partial change to one widget.
func (m *Manager) UpdateWidget(ctx context.Context, layoutID, widgetID string, u WidgetUpdate) (types.DashboardLayout, error) {
	return m.modify(ctx, layoutID, func(l *types.DashboardLayout) error {
		for i := range l.Widgets {
			if l.Widgets[i].ID != widgetID {
				continue
			}
			w := l.Widgets[i]
			if u.Type != nil {
				w.Type = *u.Type
			}
			if u.Position != nil {
				w.Position = *u.Position
			}
			if u.Size != nil {
				w.Size = *u.Size
			}
			if err := validateWidget(w); err != nil {
				return err
			}
			l.Widgets[i] = w
			return nil
		}
		return eris.Wrapf(ErrNotFound, "widget %q", widgetID)
	})
}

func (m *Manager) modify(ctx context.Context, id string, fn func(*types.DashboardLayout) error) (types.DashboardLayout, error) {
	if id == DefaultID {
		return types.DashboardLayout{}, ErrDefaultLayout
	}
	l, err := m.Get(ctx, id)
	if err != nil {
		return types.DashboardLayout{}, err
	}
	if err := fn(&l); err != nil {
		return types.DashboardLayout{}, err
	}
	l.UpdatedAt = m.now()
	if err := m.save(ctx, l); err != nil {
		return types.DashboardLayout{}, err
	}
	return l, nil
}

func (m *Manager) save(ctx context.Context, l types.DashboardLayout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrapf(err, "layout: encode %q", l.ID)
	}
	return m.kv.Put(ctx, bucket, l.ID, data)
}

func validateWidget(w types.ChartWidget) error {
	if w.ID == "" {
		return eris.Wrap(ErrInvalid, "widget id is required")
	}
	if !ValidWidgetType(w.Type) {
		return eris.Wrapf(ErrInvalid, "unknown widget type %q", w.Type)
	}
	if w.Position.X < 0 || w.Position.Y < 0 {
		return eris.Wrapf(ErrInvalid, "widget %q has a negative position", w.ID)
	}
	if w.Size.Width <= 0 || w.Size.Height <= 0 {
		return eris.Wrapf(ErrInvalid, "widget %q needs a positive size", w.ID)
	}
	return nil
}
