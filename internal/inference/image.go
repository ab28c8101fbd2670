package inference

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"renoplanner/pkg"
)

// ImageEngine generates and edits images through the Gemini image model.
type ImageEngine struct {
	client *genai.Client
	model  string
}

// NewImageEngine creates a genai-backed image generator.
func NewImageEngine(ctx context.Context, apiKey, model string) (*ImageEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image generation API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &ImageEngine{client: client, model: model}, nil
}

// GenerateImage invokes the image model with the prompt and any reference
// images. When a base image is supplied it comes first so the model treats
// it as the image to transform.
func (e *ImageEngine) GenerateImage(ctx context.Context, prompt string, images []*pkg.ImageAsset) ([]byte, string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, mime))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, "", &pkg.InferenceError{Op: "image", Err: err}
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return part.InlineData.Data, mime, nil
			}
		}
	}

	return nil, "", &pkg.InferenceError{Op: "image", Err: fmt.Errorf("model returned no image data")}
}
