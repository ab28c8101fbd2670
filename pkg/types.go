package pkg

import (
	"fmt"
	"time"
)

// ImageRole classifies the purpose of an image within a session.
type ImageRole string

const (
	RoleCurrentRoom ImageRole = "current-room"
	RoleInspiration ImageRole = "inspiration"
	RoleRendered    ImageRole = "rendered-result"
)

// ImageAsset is one version of a logical image. All versions of the same
// logical asset share a LogicalID; version numbers are contiguous from 1.
type ImageAsset struct {
	ID            string    `json:"id"`
	LogicalID     string    `json:"logical_id"`
	Name          string    `json:"name"`
	Role          ImageRole `json:"role"`
	Version       int       `json:"version"`
	ParentVersion int       `json:"parent_version"` // 0 when this is the first version
	MimeType      string    `json:"mime_type"`
	Data          []byte    `json:"data"`
	CreatedAt     time.Time `json:"created_at"`
}

// VersionedName builds a display filename like "kitchen_renovation_v2.png".
func VersionedName(assetName string, version int) string {
	return fmt.Sprintf("%s_v%d.png", assetName, version)
}

// RoutingDecision is the dispatcher's classification of a request.
type RoutingDecision string

const (
	RouteGeneralChat RoutingDecision = "general-chat"
	RouteEditRequest RoutingDecision = "edit-request"
	RouteNewProject  RoutingDecision = "new-project-request"
)

// AssessmentResult is the structured outcome of the visual assessment stage.
type AssessmentResult struct {
	RoomType     string   `json:"room_type"`
	Dimensions   string   `json:"dimensions,omitempty"`
	SquareFeet   int      `json:"square_feet,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	CurrentStyle string   `json:"current_style,omitempty"`
	DesiredStyle string   `json:"desired_style,omitempty"`
	Materials    []string `json:"materials,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	BudgetLimit  float64  `json:"budget_limit,omitempty"` // 0 means not specified
}

// CostItem is one line of the itemized cost estimate.
type CostItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TimelinePhase is one ordered phase of the renovation timeline.
// StartWeek of phase i equals StartWeek+DurationWeeks of phase i-1.
type TimelinePhase struct {
	Name          string `json:"name"`
	StartWeek     int    `json:"start_week"`
	DurationWeeks int    `json:"duration_weeks"`
}

// DesignPlan is the design planning stage output. Immutable after creation.
type DesignPlan struct {
	RoomType  string          `json:"room_type"`
	Scope     string          `json:"scope"`
	Style     string          `json:"style,omitempty"`
	Materials []string        `json:"materials"`
	CostItems []CostItem      `json:"cost_items"`
	TotalCost float64         `json:"total_cost"`
	Timeline  []TimelinePhase `json:"timeline"`
	Notes     string          `json:"notes,omitempty"`
}

// TotalWeeks returns the end week of the last timeline phase.
func (p *DesignPlan) TotalWeeks() int {
	if len(p.Timeline) == 0 {
		return 0
	}
	last := p.Timeline[len(p.Timeline)-1]
	return last.StartWeek + last.DurationWeeks
}

// PipelineResult aggregates the outputs of a completed new-project run.
type PipelineResult struct {
	Summary    string            `json:"summary"`
	Assessment *AssessmentResult `json:"assessment"`
	Plan       *DesignPlan       `json:"plan"`
	Rendering  *ImageAsset       `json:"rendering"`
}

// DisplayableResult is what the session boundary hands back to the caller:
// text, an image, or both.
type DisplayableResult struct {
	Text     string          `json:"text,omitempty"`
	Image    *ImageAsset     `json:"image,omitempty"`
	Decision RoutingDecision `json:"decision"`
}
