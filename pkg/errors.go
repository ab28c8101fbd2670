package pkg

import (
	"errors"
	"fmt"
)

// MissingInputError indicates a required image or context is absent.
// Recoverable by prompting the user for the missing input.
type MissingInputError struct {
	Input string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Input)
}

// InferenceError indicates an upstream model call failed (quota, network,
// content policy). Recoverable by retry or user notification.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s failed: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// PlanningError indicates structurally incomplete intermediate data reached
// the planner. This is a stage contract violation, not a user error.
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

// RenderError indicates the image-generation call failed or returned no
// image data.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PipelineStage identifies one of the three pipeline stages.
type PipelineStage string

const (
	StageAssessment PipelineStage = "visual-assessment"
	StagePlanning   PipelineStage = "design-planning"
	StageSynthesis  PipelineStage = "synthesis"
)

// PipelineStageError tags a stage failure with the stage it occurred in.
// The underlying cause is preserved unchanged and exposed via Unwrap.
type PipelineStageError struct {
	Stage PipelineStage
	Err   error
}

func (e *PipelineStageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineStageError) Unwrap() error { return e.Err }

// UserMessage maps an error to a human-readable message. Raw upstream
// payloads are never surfaced directly.
func UserMessage(err error) string {
	var missing *MissingInputError
	if errors.As(err, &missing) {
		switch missing.Input {
		case string(RoleCurrentRoom):
			return "I need a photo of your current room before I can plan a renovation. Please upload one and try again."
		case string(RoleRendered):
			return "There is no rendering to edit yet. Start a new project first, then ask for changes."
		default:
			return fmt.Sprintf("I'm missing something I need: %s. Please provide it and try again.", missing.Input)
		}
	}

	var stageErr *PipelineStageError
	if errors.As(err, &stageErr) {
		return fmt.Sprintf("The %s step of your renovation plan failed. %s", stageErr.Stage, UserMessage(stageErr.Err))
	}

	var render *RenderError
	if errors.As(err, &render) {
		return "I couldn't generate the rendering this time. Please try again in a moment."
	}

	var infer *InferenceError
	if errors.As(err, &infer) {
		return "The AI service is temporarily unavailable. Please try again shortly."
	}

	var planning *PlanningError
	if errors.As(err, &planning) {
		return "Something went wrong while building your design plan. This looks like a bug on our side."
	}

	return "Something went wrong handling your request. Please try again."
}
