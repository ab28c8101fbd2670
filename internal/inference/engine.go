package inference

import (
	"context"

	"renoplanner/pkg"
)

// TextGenerator produces text from a prompt plus optional images.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, images []*pkg.ImageAsset) (string, error)
}

// ImageGenerator produces image bytes from a prompt plus optional images.
// The returned string is the MIME type of the generated image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, images []*pkg.ImageAsset) ([]byte, string, error)
}

// Engine is the full inference capability: text and image generation.
// Both directions treat the underlying model as a black box; failures
// surface as *pkg.InferenceError and carry no retry policy.
type Engine interface {
	TextGenerator
	ImageGenerator
}

type engine struct {
	TextGenerator
	ImageGenerator
}

// NewEngine combines a chat and an image backend into one Engine.
func NewEngine(text TextGenerator, image ImageGenerator) Engine {
	return &engine{TextGenerator: text, ImageGenerator: image}
}
