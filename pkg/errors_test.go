package pkg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineStageErrorPreservesCause(t *testing.T) {
	cause := &MissingInputError{Input: string(RoleCurrentRoom)}
	err := &PipelineStageError{Stage: StageAssessment, Err: cause}

	var missing *MissingInputError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, cause, missing)
	assert.Contains(t, err.Error(), "visual-assessment")
}

func TestInferenceErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &InferenceError{Op: "chat", Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestUserMessageMissingRoomImage(t *testing.T) {
	msg := UserMessage(&MissingInputError{Input: string(RoleCurrentRoom)})
	assert.Contains(t, msg, "photo of your current room")
}

func TestUserMessageMissingRendering(t *testing.T) {
	msg := UserMessage(&MissingInputError{Input: string(RoleRendered)})
	assert.Contains(t, msg, "no rendering to edit")
}

func TestUserMessageStageWrapped(t *testing.T) {
	err := &PipelineStageError{
		Stage: StageSynthesis,
		Err:   &RenderError{Err: errors.New("raw upstream payload")},
	}
	msg := UserMessage(err)
	assert.Contains(t, msg, "synthesis")
	assert.NotContains(t, msg, "raw upstream payload")
}

func TestUserMessageFallback(t *testing.T) {
	assert.NotEmpty(t, UserMessage(errors.New("anything")))
}

func TestVersionedName(t *testing.T) {
	assert.Equal(t, "kitchen_renovation_v2.png", VersionedName("kitchen_renovation", 2))
}

func TestTotalWeeks(t *testing.T) {
	plan := &DesignPlan{Timeline: []TimelinePhase{
		{Name: "planning", StartWeek: 0, DurationWeeks: 2},
		{Name: "construction", StartWeek: 2, DurationWeeks: 4},
	}}
	assert.Equal(t, 6, plan.TotalWeeks())
	assert.Equal(t, 0, (&DesignPlan{}).TotalWeeks())
}
