// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// WidgetType names a dashboard chart a widget renders.
type WidgetType string

const (
	WidgetTrialCount       WidgetType = "TrialCount"
	WidgetConditions       WidgetType = "ConditionsChart"
	WidgetSponsors         WidgetType = "SponsorsChart"
	WidgetTopSponsors      WidgetType = "TopSponsorsChart"
	WidgetRegion           WidgetType = "RegionChart"
	WidgetStartDate        WidgetType = "StartDateChart"
	WidgetAllStudies       WidgetType = "AllStudiesTable"
	WidgetPhaseClass       WidgetType = "SmartPhaseClassificationChart"
	WidgetTherapeuticClass WidgetType = "SmartTherapeuticClassificationChart"
	WidgetTreatmentClass   WidgetType = "SmartTreatmentClassificationChart"
	WidgetPopulationClass  WidgetType = "SmartPopulationClassificationChart"
	WidgetOverviewClass    WidgetType = "SmartOverviewClassificationChart"
)

// Position is a widget's grid cell.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a widget's extent in grid cells.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ChartWidget places one chart on a dashboard.
type ChartWidget struct {
	ID       string     `json:"id" yaml:"id"`
	Type     WidgetType `json:"type" yaml:"type"`
	Position Position   `json:"position" yaml:"position"`
	Size     Size       `json:"size" yaml:"size"`
}

// DashboardLayout is a named arrangement of chart widgets.
type DashboardLayout struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	IsDefault bool          `json:"isDefault" yaml:"isDefault"`
	Widgets   []ChartWidget `json:"widgets" yaml:"widgets"`
	CreatedAt time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" yaml:"updatedAt"`
}
