package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"renoplanner/internal/inference"
	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// Synthesizer is the final pipeline stage: it composes the renovation
// summary and generates the first rendered-result version for the project.
// It is the only stage that needs both directions of the inference engine.
type Synthesizer struct {
	engine inference.Engine
	images store.ImageStore
}

func NewSynthesizer(engine inference.Engine, images store.ImageStore) *Synthesizer {
	return &Synthesizer{engine: engine, images: images}
}

// Synthesize invokes the image model with a prompt composed from the plan
// and assessment. On success the rendering is stored as a rendered-result
// asset at version 1; on failure nothing is persisted.
func (s *Synthesizer) Synthesize(ctx context.Context, plan *pkg.DesignPlan, assessment *pkg.AssessmentResult, stylePreferences string) (string, *pkg.ImageAsset, error) {
	if plan == nil || assessment == nil {
		return "", nil, &pkg.PlanningError{Reason: "synthesis requires a plan and an assessment"}
	}

	renderPrompt := s.composeRenderPrompt(plan, assessment, stylePreferences)

	// Current room photo, when present, anchors the layout of the render.
	var refs []*pkg.ImageAsset
	if room, err := s.images.GetLatest(ctx, pkg.RoleCurrentRoom); err == nil && room != nil {
		refs = append(refs, room)
	}
	if insp, err := s.images.GetLatest(ctx, pkg.RoleInspiration); err == nil && insp != nil {
		refs = append(refs, insp)
	}

	// Prompt-rewrite pass. A rewrite failure is not fatal: the composed
	// prompt is already complete, just less polished.
	rewritten, err := s.engine.GenerateText(ctx,
		"Rewrite the following into a single detailed professional interior photography prompt. Keep every design specification. Respond with the prompt only.\n\n"+renderPrompt,
		nil)
	if err != nil {
		log.Warn().Err(err).Msg("prompt rewrite failed, using composed prompt")
		rewritten = renderPrompt
	}

	data, mime, err := s.engine.GenerateImage(ctx, rewritten, refs)
	if err != nil {
		return "", nil, &pkg.RenderError{Err: err}
	}

	// A cancelled request commits nothing, even if generation finished.
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	asset := &pkg.ImageAsset{
		Name:     assetName(plan),
		Role:     pkg.RoleRendered,
		MimeType: mime,
		Data:     data,
	}
	logicalID, err := s.images.Put(ctx, asset)
	if err != nil {
		return "", nil, &pkg.RenderError{Err: err}
	}

	stored, err := s.images.GetVersion(ctx, logicalID, 1)
	if err != nil || stored == nil {
		return "", nil, &pkg.RenderError{Err: fmt.Errorf("stored rendering not retrievable: %v", err)}
	}

	return s.summary(plan, stored), stored, nil
}

func (s *Synthesizer) composeRenderPrompt(plan *pkg.DesignPlan, assessment *pkg.AssessmentResult, stylePreferences string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Professional interior photography of a renovated %s.\n\n", strings.ReplaceAll(plan.RoomType, "_", " "))

	if assessment.Condition != "" || assessment.Dimensions != "" {
		b.WriteString("Current space context: ")
		if assessment.Dimensions != "" {
			fmt.Fprintf(&b, "approximately %s; ", assessment.Dimensions)
		}
		b.WriteString(assessment.Condition)
		b.WriteString(". Preserve the existing layout and perspective.\n\n")
	}

	b.WriteString("Design specifications:\n")
	style := plan.Style
	if style == "" {
		style = stylePreferences
	}
	if style != "" {
		fmt.Fprintf(&b, "- Style: %s\n", style)
	}
	fmt.Fprintf(&b, "- Renovation scope: %s\n", plan.Scope)
	if len(plan.Materials) > 0 {
		fmt.Fprintf(&b, "- Materials: %s\n", strings.Join(plan.Materials, ", "))
	}
	for _, c := range assessment.Constraints {
		fmt.Fprintf(&b, "- Constraint: %s\n", c)
	}

	b.WriteString("\nCamera: wide-angle interior photography, eye-level perspective.\n")
	b.WriteString("Quality: photorealistic, natural lighting, bright and airy.")
	return b.String()
}

func (s *Synthesizer) summary(plan *pkg.DesignPlan, rendering *pkg.ImageAsset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Renovation plan: %s %s renovation\n\n", plan.Scope, strings.ReplaceAll(plan.RoomType, "_", " "))

	b.WriteString("Budget breakdown:\n")
	for _, item := range plan.CostItems {
		fmt.Fprintf(&b, "- %s: $%.0f\n", item.Category, item.Amount)
	}
	fmt.Fprintf(&b, "- Total: $%.0f\n\n", plan.TotalCost)

	fmt.Fprintf(&b, "Timeline: %d weeks\n", plan.TotalWeeks())
	for _, phase := range plan.Timeline {
		fmt.Fprintf(&b, "- %s: weeks %d-%d\n", phase.Name, phase.StartWeek+1, phase.StartWeek+phase.DurationWeeks)
	}

	if plan.Notes != "" {
		b.WriteString("\n" + plan.Notes + "\n")
	}

	fmt.Fprintf(&b, "\nRendering saved as %s. Ask for changes to refine it.", rendering.Name)
	return b.String()
}

func assetName(plan *pkg.DesignPlan) string {
	name := plan.RoomType
	if plan.Style != "" {
		style := strings.ReplaceAll(strings.ToLower(plan.Style), " ", "_")
		name += "_" + style
	}
	return name + "_renovation"
}
