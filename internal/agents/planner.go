package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/rs/zerolog/log"

	"renoplanner/internal/config"
	"renoplanner/pkg"
)

// Planner turns an assessment plus user preferences into a design plan.
// Cost and timeline come from the configured rate and phase tables, so a
// plan is reproducible for the same assessment and preferences.
type Planner struct {
	cfg          config.PlannerConfig
	costTool     tool.InvokableTool
	timelineTool tool.InvokableTool
}

func NewPlanner(cfg config.PlannerConfig) (*Planner, error) {
	costTool, err := CostEstimateTool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build cost tool: %w", err)
	}
	timelineTool, err := TimelineTool(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline tool: %w", err)
	}
	return &Planner{cfg: cfg, costTool: costTool, timelineTool: timelineTool}, nil
}

// Plan fails with PlanningError when the assessment is structurally
// incomplete. The produced plan always has a non-negative itemized total
// equal to the sum of its cost items, and strictly sequential phases.
func (p *Planner) Plan(ctx context.Context, assessment *pkg.AssessmentResult, preferences string) (*pkg.DesignPlan, error) {
	if assessment == nil {
		return nil, &pkg.PlanningError{Reason: "assessment is missing"}
	}
	if assessment.RoomType == "" {
		return nil, &pkg.PlanningError{Reason: "assessment has no room type"}
	}

	room := NormalizeRoomType(assessment.RoomType, p.cfg)
	scope := DetectScope(preferences, p.cfg)

	sqft := assessment.SquareFeet
	if sqft <= 0 {
		sqft = DefaultSquareFeet(p.cfg, room)
	}

	low, high := RateRange(p.cfg, room, scope)
	base := (low + high) / 2 * float64(sqft)

	materials := round(base * 0.45)
	labor := round(base * 0.40)
	permits := round(base * 0.05)
	contingency := round((materials + labor + permits) * p.cfg.ContingencyRate)

	items := []pkg.CostItem{
		{Category: "materials", Amount: materials},
		{Category: "labor", Amount: labor},
		{Category: "permits", Amount: permits},
		{Category: "contingency", Amount: contingency},
	}
	total := 0.0
	for _, item := range items {
		total += item.Amount
	}

	plan := &pkg.DesignPlan{
		RoomType:  room,
		Scope:     scope,
		Style:     assessment.DesiredStyle,
		Materials: p.materialList(assessment, room, scope),
		CostItems: items,
		TotalCost: total,
		Timeline:  p.timeline(scope),
		Notes:     p.notes(ctx, room, scope, sqft),
	}

	if assessment.BudgetLimit > 0 && total > assessment.BudgetLimit {
		plan.Notes += fmt.Sprintf("\nEstimated total exceeds the $%.0f budget; consider phasing the work or reducing scope.", assessment.BudgetLimit)
	}

	return plan, nil
}

func (p *Planner) timeline(scope string) []pkg.TimelinePhase {
	specs := p.cfg.Phases[scope]
	phases := make([]pkg.TimelinePhase, 0, len(specs))
	week := 0
	for _, spec := range specs {
		phases = append(phases, pkg.TimelinePhase{
			Name:          spec.Name,
			StartWeek:     week,
			DurationWeeks: spec.Weeks,
		})
		week += spec.Weeks
	}
	return phases
}

func (p *Planner) materialList(assessment *pkg.AssessmentResult, room, scope string) []string {
	materials := append([]string{}, assessment.Materials...)
	materials = append(materials, "paint and finishes")
	if room == "kitchen" {
		materials = append(materials, "cabinetry and hardware")
	}
	if room == "bathroom" {
		materials = append(materials, "tile and waterproofing")
	}
	if scope == "full" || scope == "luxury" {
		materials = append(materials, "new fixtures and lighting", "flooring")
	}
	return dedupe(materials)
}

// notes runs the renovation knowledge tools for the human-readable cost
// range and phase schedule attached to the plan.
func (p *Planner) notes(ctx context.Context, room, scope string, sqft int) string {
	var parts []string

	costArgs, err := sonic.MarshalString(&CostEstimateArgs{RoomType: room, Scope: scope, SquareFeet: sqft})
	if err == nil {
		if out, err := p.costTool.InvokableRun(ctx, costArgs); err == nil {
			parts = append(parts, out)
		} else {
			log.Warn().Err(err).Msg("cost tool failed")
		}
	}

	timelineArgs, err := sonic.MarshalString(&TimelineArgs{Scope: scope})
	if err == nil {
		if out, err := p.timelineTool.InvokableRun(ctx, timelineArgs); err == nil {
			parts = append(parts, out)
		} else {
			log.Warn().Err(err).Msg("timeline tool failed")
		}
	}

	return strings.Join(parts, "\n")
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v)
}
