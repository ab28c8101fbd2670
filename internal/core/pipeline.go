package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// Assessor is the first pipeline stage: structured assessment of the
// uploaded room images.
type Assessor interface {
	Assess(ctx context.Context, currentRoom, inspiration []*pkg.ImageAsset, preferences string) (*pkg.AssessmentResult, error)
}

// Planner is the second pipeline stage: cost, timeline, and material plan
// derived from the assessment.
type Planner interface {
	Plan(ctx context.Context, assessment *pkg.AssessmentResult, preferences string) (*pkg.DesignPlan, error)
}

// Synthesizer is the third pipeline stage: summary text plus the first
// rendering of the planned renovation.
type Synthesizer interface {
	Synthesize(ctx context.Context, plan *pkg.DesignPlan, assessment *pkg.AssessmentResult, preferences string) (string, *pkg.ImageAsset, error)
}

// Executor runs the three stages strictly in order. A stage failure aborts
// the run; later stages are never invoked on partial input.
type Executor struct {
	assessor    Assessor
	planner     Planner
	synthesizer Synthesizer
	images      store.ImageStore
}

func NewExecutor(assessor Assessor, planner Planner, synthesizer Synthesizer, images store.ImageStore) *Executor {
	return &Executor{
		assessor:    assessor,
		planner:     planner,
		synthesizer: synthesizer,
		images:      images,
	}
}

// Run executes assessment, planning, and synthesis for one new-project
// request. Stage failures come back as *pkg.PipelineStageError tagged with
// the stage that failed, with the cause unchanged underneath.
func (e *Executor) Run(ctx context.Context, request string) (*pkg.PipelineResult, error) {
	currentRoom, err := e.images.List(ctx, pkg.RoleCurrentRoom)
	if err != nil {
		return nil, &pkg.PipelineStageError{Stage: pkg.StageAssessment, Err: err}
	}
	inspiration, err := e.images.List(ctx, pkg.RoleInspiration)
	if err != nil {
		return nil, &pkg.PipelineStageError{Stage: pkg.StageAssessment, Err: err}
	}

	start := time.Now()
	assessment, err := e.assessor.Assess(ctx, currentRoom, inspiration, request)
	if err != nil {
		return nil, &pkg.PipelineStageError{Stage: pkg.StageAssessment, Err: err}
	}
	log.Debug().
		Str("stage", string(pkg.StageAssessment)).
		Str("room_type", assessment.RoomType).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline stage complete")

	start = time.Now()
	plan, err := e.planner.Plan(ctx, assessment, request)
	if err != nil {
		return nil, &pkg.PipelineStageError{Stage: pkg.StagePlanning, Err: err}
	}
	log.Debug().
		Str("stage", string(pkg.StagePlanning)).
		Float64("total_cost", plan.TotalCost).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline stage complete")

	start = time.Now()
	summary, rendering, err := e.synthesizer.Synthesize(ctx, plan, assessment, request)
	if err != nil {
		return nil, &pkg.PipelineStageError{Stage: pkg.StageSynthesis, Err: err}
	}
	log.Debug().
		Str("stage", string(pkg.StageSynthesis)).
		Str("rendering", rendering.Name).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline stage complete")

	return &pkg.PipelineResult{
		Summary:    summary,
		Assessment: assessment,
		Plan:       plan,
		Rendering:  rendering,
	}, nil
}
