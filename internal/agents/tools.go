package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"renoplanner/internal/config"
)

// CostEstimateArgs are the arguments for the cost estimation tool.
type CostEstimateArgs struct {
	RoomType   string `json:"room_type" jsonschema:"description=Type of room (kitchen, bathroom, bedroom, living_room)"`
	Scope      string `json:"scope" jsonschema:"description=Renovation scope (cosmetic, moderate, full, luxury)"`
	SquareFeet int    `json:"square_feet" jsonschema:"description=Room size in square feet"`
}

// TimelineArgs are the arguments for the timeline tool.
type TimelineArgs struct {
	Scope string `json:"scope" jsonschema:"description=Renovation scope (cosmetic, moderate, full, luxury)"`
}

// CostEstimateTool estimates a renovation cost range from the configured
// per-square-foot rate table.
func CostEstimateTool(cfg config.PlannerConfig) (tool.InvokableTool, error) {
	return utils.InferTool("estimate_renovation_cost",
		"Estimate renovation costs based on room type, scope, and square footage",
		func(ctx context.Context, in *CostEstimateArgs) (string, error) {
			room := NormalizeRoomType(in.RoomType, cfg)
			scope := NormalizeScope(in.Scope, cfg)
			low, high := RateRange(cfg, room, scope)

			sqft := in.SquareFeet
			if sqft <= 0 {
				sqft = DefaultSquareFeet(cfg, room)
			}

			return fmt.Sprintf("Estimated cost: $%.0f - $%.0f (%s %s renovation, ~%d sq ft)",
				low*float64(sqft), high*float64(sqft), scope, room, sqft), nil
		})
}

// TimelineTool renders the configured phase schedule for a scope.
func TimelineTool(cfg config.PlannerConfig) (tool.InvokableTool, error) {
	return utils.InferTool("calculate_timeline",
		"Estimate the renovation timeline with ordered phases for a given scope",
		func(ctx context.Context, in *TimelineArgs) (string, error) {
			scope := NormalizeScope(in.Scope, cfg)
			phases := cfg.Phases[scope]
			if len(phases) == 0 {
				return fmt.Sprintf("Estimated timeline: no phase data for scope %q", scope), nil
			}

			var b strings.Builder
			total := 0
			for _, p := range phases {
				total += p.Weeks
			}
			fmt.Fprintf(&b, "Estimated timeline: %d weeks (%s)\n", total, scope)
			week := 0
			for i, p := range phases {
				fmt.Fprintf(&b, "%d. %s: weeks %d-%d\n", i+1, p.Name, week+1, week+p.Weeks)
				week += p.Weeks
			}
			return strings.TrimRight(b.String(), "\n"), nil
		})
}

// NormalizeRoomType maps free-form room names onto the rate table keys,
// falling back to living_room for unknown rooms.
func NormalizeRoomType(roomType string, cfg config.PlannerConfig) string {
	room := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(roomType)), " ", "_")
	if _, ok := cfg.Rates[room]; ok {
		return room
	}
	return "living_room"
}

// NormalizeScope maps a scope string onto the rate table, falling back to
// the configured default scope.
func NormalizeScope(scope string, cfg config.PlannerConfig) string {
	s := strings.ToLower(strings.TrimSpace(scope))
	for _, scopes := range cfg.Rates {
		if _, ok := scopes[s]; ok {
			return s
		}
	}
	if cfg.DefaultScope != "" {
		return cfg.DefaultScope
	}
	return "moderate"
}

// RateRange returns the low/high per-square-foot rates for a room and scope.
func RateRange(cfg config.PlannerConfig, room, scope string) (float64, float64) {
	scopes, ok := cfg.Rates[room]
	if !ok {
		scopes = cfg.Rates["living_room"]
	}
	bounds, ok := scopes[scope]
	if !ok || len(bounds) != 2 {
		bounds = scopes[NormalizeScope(cfg.DefaultScope, cfg)]
	}
	if len(bounds) != 2 {
		return 0, 0
	}
	return bounds[0], bounds[1]
}

// DefaultSquareFeet returns the configured default size for a room type.
func DefaultSquareFeet(cfg config.PlannerConfig, room string) int {
	if sqft, ok := cfg.DefaultSquareFeet[room]; ok && sqft > 0 {
		return sqft
	}
	return 150
}

// DetectScope finds a scope keyword in the user's request text.
func DetectScope(text string, cfg config.PlannerConfig) string {
	lower := strings.ToLower(text)
	for _, scope := range []string{"luxury", "full", "cosmetic", "moderate"} {
		if strings.Contains(lower, scope) {
			return NormalizeScope(scope, cfg)
		}
	}
	return NormalizeScope(cfg.DefaultScope, cfg)
}
