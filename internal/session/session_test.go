package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renoplanner/internal/agents"
	"renoplanner/internal/config"
	"renoplanner/internal/conversation"
	"renoplanner/internal/core"
	"renoplanner/internal/inference"
	"renoplanner/internal/store"
	"renoplanner/pkg"
)

type fakeText struct{ response string }

func (f *fakeText) GenerateText(ctx context.Context, prompt string, images []*pkg.ImageAsset) (string, error) {
	return f.response, nil
}

type fakeImage struct{ data []byte }

func (f *fakeImage) GenerateImage(ctx context.Context, prompt string, images []*pkg.ImageAsset) ([]byte, string, error) {
	return f.data, "image/png", nil
}

type fakeResponder struct{ answer string }

func (f *fakeResponder) Answer(ctx context.Context, text, conversationContext string) (string, error) {
	return f.answer, nil
}

func plannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		ContingencyRate: 0.10,
		DefaultScope:    "moderate",
		Rates: map[string]map[string][]float64{
			"kitchen":     {"moderate": {150, 300}},
			"living_room": {"moderate": {50, 120}},
		},
		DefaultSquareFeet: map[string]int{"kitchen": 150, "living_room": 250},
		Phases: map[string][]config.PhaseSpec{
			"moderate": {
				{Name: "planning and permits", Weeks: 2},
				{Name: "construction", Weeks: 5},
			},
		},
	}
}

// newTestSession wires real routing, pipeline, and storage over fake model
// backends.
func newTestSession(t *testing.T) (*Session, *store.MemoryStore, *conversation.MemoryRepository) {
	t.Helper()

	images := store.NewMemoryStore()
	text := &fakeText{response: "room_type: kitchen\nsquare_feet: 150\ndesired_style: modern"}
	image := &fakeImage{data: []byte("rendered-bytes")}

	planner, err := agents.NewPlanner(plannerConfig())
	require.NoError(t, err)
	assessor := agents.NewAssessor(text)
	synthesizer := agents.NewSynthesizer(inference.NewEngine(text, image), images)
	editor := agents.NewEditor(image, images)
	pipeline := core.NewExecutor(assessor, planner, synthesizer, images)

	classifier := core.NewRuleClassifier(
		[]string{"change", "make it", "darker"},
		[]string{"renovate", "renovation", "remodel"},
		images,
	)
	dispatcher := core.NewDispatcher(classifier, &fakeResponder{answer: "happy to help"}, editor, pipeline, images)

	conv := conversation.NewMemoryRepository()
	sess := New(dispatcher, conv, conversation.NewRecentTurnsStrategy(10), images)
	return sess, images, conv
}

func roomUpload() Upload {
	return Upload{
		Name:     "kitchen.png",
		Role:     pkg.RoleCurrentRoom,
		MimeType: "image/png",
		Data:     []byte("photo"),
	}
}

func TestNewProjectScenario(t *testing.T) {
	sess, images, conv := newTestSession(t)
	ctx := context.Background()

	result, err := sess.HandleUserMessage(ctx, "I want to renovate my kitchen", []Upload{roomUpload()})
	require.NoError(t, err)

	assert.Equal(t, pkg.RouteNewProject, result.Decision)
	assert.Contains(t, result.Text, "Renovation plan")
	assert.Contains(t, result.Text, "Budget breakdown")
	require.NotNil(t, result.Image)
	assert.Equal(t, 1, result.Image.Version)
	assert.Equal(t, pkg.RoleRendered, result.Image.Role)

	// The upload landed in the store at version 1.
	room, err := images.GetLatest(ctx, pkg.RoleCurrentRoom)
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "kitchen_v1.png", room.Name)

	// Both turns were committed to the conversation.
	history, err := conv.Load(ctx, sess.ID())
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
}

func TestEditAfterNewProject(t *testing.T) {
	sess, images, _ := newTestSession(t)
	ctx := context.Background()

	first, err := sess.HandleUserMessage(ctx, "I want to renovate my kitchen", []Upload{roomUpload()})
	require.NoError(t, err)
	require.NotNil(t, first.Image)

	second, err := sess.HandleUserMessage(ctx, "make it darker", nil)
	require.NoError(t, err)

	assert.Equal(t, pkg.RouteEditRequest, second.Decision)
	require.NotNil(t, second.Image)
	assert.Equal(t, 2, second.Image.Version)
	assert.Equal(t, 1, second.Image.ParentVersion)
	assert.Equal(t, first.Image.LogicalID, second.Image.LogicalID)

	// The first rendering remains retrievable.
	v1, err := images.GetVersion(ctx, first.Image.LogicalID, 1)
	require.NoError(t, err)
	require.NotNil(t, v1)
}

func TestNewProjectWithoutRoomImage(t *testing.T) {
	sess, _, conv := newTestSession(t)
	ctx := context.Background()

	_, err := sess.HandleUserMessage(ctx, "renovate my kitchen", nil)
	var missing *pkg.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, string(pkg.RoleCurrentRoom), missing.Input)

	// Failed turns are not committed.
	history, err := conv.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestGeneralChat(t *testing.T) {
	sess, _, conv := newTestSession(t)
	ctx := context.Background()

	result, err := sess.HandleUserMessage(ctx, "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, pkg.RouteGeneralChat, result.Decision)
	assert.Equal(t, "happy to help", result.Text)
	assert.Nil(t, result.Image)

	history, err := conv.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Len(t, history.Messages, 2)
}

func TestReferencesAndRenderings(t *testing.T) {
	sess, _, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.HandleUserMessage(ctx, "I want to renovate my kitchen", []Upload{
		roomUpload(),
		{Name: "inspo.jpg", Role: pkg.RoleInspiration, MimeType: "image/jpeg", Data: []byte("inspo")},
	})
	require.NoError(t, err)

	refs, err := sess.References(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	renders, err := sess.Renderings(ctx)
	require.NoError(t, err)
	require.Len(t, renders, 1)
	assert.Equal(t, 1, renders[0].Version)
}
