package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renoplanner/pkg"
)

// fakeTextGenerator returns a canned response and records what it was asked.
type fakeTextGenerator struct {
	response string
	err      error

	lastPrompt string
	lastImages []*pkg.ImageAsset
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string, images []*pkg.ImageAsset) (string, error) {
	f.lastPrompt = prompt
	f.lastImages = images
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func roomImage(name string) *pkg.ImageAsset {
	return &pkg.ImageAsset{Name: name, Role: pkg.RoleCurrentRoom, Data: []byte("img")}
}

func TestAssessRequiresCurrentRoom(t *testing.T) {
	a := NewAssessor(&fakeTextGenerator{response: "room_type: kitchen"})

	_, err := a.Assess(context.Background(), nil, nil, "renovate my kitchen")
	var missing *pkg.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, string(pkg.RoleCurrentRoom), missing.Input)
}

func TestAssessParsesModelOutput(t *testing.T) {
	gen := &fakeTextGenerator{response: `room_type: Kitchen
dimensions: 12x14 ft
square_feet: 168
condition: dated cabinets, worn vinyl flooring
current_style: 1990s builder grade
desired_style: modern farmhouse
materials: laminate counters, vinyl floor
constraints: keep layout, keep window placement
budget: $25,000`}

	a := NewAssessor(gen)
	result, err := a.Assess(context.Background(), []*pkg.ImageAsset{roomImage("kitchen.png")}, nil, "modern farmhouse kitchen")
	require.NoError(t, err)

	assert.Equal(t, "kitchen", result.RoomType)
	assert.Equal(t, "12x14 ft", result.Dimensions)
	assert.Equal(t, 168, result.SquareFeet)
	assert.Equal(t, "modern farmhouse", result.DesiredStyle)
	assert.Equal(t, []string{"laminate counters", "vinyl floor"}, result.Materials)
	assert.Equal(t, []string{"keep layout", "keep window placement"}, result.Constraints)
	assert.Equal(t, 25000.0, result.BudgetLimit)
}

func TestAssessPassesAllImages(t *testing.T) {
	gen := &fakeTextGenerator{response: "room_type: bathroom"}
	a := NewAssessor(gen)

	inspiration := &pkg.ImageAsset{Name: "spa.png", Role: pkg.RoleInspiration, Data: []byte("img")}
	_, err := a.Assess(context.Background(), []*pkg.ImageAsset{roomImage("bath.png")}, []*pkg.ImageAsset{inspiration}, "spa bathroom")
	require.NoError(t, err)

	require.Len(t, gen.lastImages, 2)
	assert.Equal(t, pkg.RoleCurrentRoom, gen.lastImages[0].Role)
	assert.Equal(t, pkg.RoleInspiration, gen.lastImages[1].Role)
}

func TestAssessFallsBackToRequestCues(t *testing.T) {
	gen := &fakeTextGenerator{response: "condition: hard to tell"}
	a := NewAssessor(gen)

	result, err := a.Assess(context.Background(), []*pkg.ImageAsset{roomImage("photo.png")}, nil, "I want a minimalist bedroom makeover")
	require.NoError(t, err)
	assert.Equal(t, "bedroom", result.RoomType)
	assert.Equal(t, "minimalist", result.DesiredStyle)
}

func TestAssessPropagatesModelError(t *testing.T) {
	boom := &pkg.InferenceError{Op: "chat", Err: errors.New("quota exceeded")}
	a := NewAssessor(&fakeTextGenerator{err: boom})

	_, err := a.Assess(context.Background(), []*pkg.ImageAsset{roomImage("photo.png")}, nil, "kitchen")
	var infer *pkg.InferenceError
	require.ErrorAs(t, err, &infer)
}

func TestParseAssessmentSkipsMalformedLines(t *testing.T) {
	result := parseAssessment("no delimiter here\nroom_type: kitchen\nsquare_feet: about n/a\n: empty key\nbudget:")
	assert.Equal(t, "kitchen", result.RoomType)
	assert.Equal(t, 0, result.SquareFeet)
	assert.Equal(t, 0.0, result.BudgetLimit)
}
