package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// GeneralResponder handles the general-chat route.
type GeneralResponder interface {
	Answer(ctx context.Context, text, conversationContext string) (string, error)
}

// RenderEditor handles the edit-request route.
type RenderEditor interface {
	Edit(ctx context.Context, request string) (*pkg.ImageAsset, error)
}

// PipelineRunner handles the new-project route.
type PipelineRunner interface {
	Run(ctx context.Context, request string) (*pkg.PipelineResult, error)
}

// Dispatcher classifies each message and hands it to exactly one handler.
type Dispatcher struct {
	classifier Classifier
	responder  GeneralResponder
	editor     RenderEditor
	pipeline   PipelineRunner
	images     store.ImageStore
}

func NewDispatcher(classifier Classifier, responder GeneralResponder, editor RenderEditor, pipeline PipelineRunner, images store.ImageStore) *Dispatcher {
	return &Dispatcher{
		classifier: classifier,
		responder:  responder,
		editor:     editor,
		pipeline:   pipeline,
		images:     images,
	}
}

// Dispatch routes one user message. A new-project request with no
// current-room image fails with *pkg.MissingInputError before any pipeline
// stage runs.
func (d *Dispatcher) Dispatch(ctx context.Context, text, conversationContext string) (*pkg.DisplayableResult, error) {
	decision, err := d.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	log.Info().Str("route", string(decision)).Msg("message routed")

	switch decision {
	case pkg.RouteEditRequest:
		asset, err := d.editor.Edit(ctx, text)
		if err != nil {
			return nil, err
		}
		return &pkg.DisplayableResult{
			Text:     fmt.Sprintf("Updated rendering saved as %s.", asset.Name),
			Image:    asset,
			Decision: decision,
		}, nil

	case pkg.RouteNewProject:
		room, err := d.images.GetLatest(ctx, pkg.RoleCurrentRoom)
		if err != nil {
			return nil, err
		}
		if room == nil {
			return nil, &pkg.MissingInputError{Input: string(pkg.RoleCurrentRoom)}
		}

		result, err := d.pipeline.Run(ctx, text)
		if err != nil {
			return nil, err
		}
		return &pkg.DisplayableResult{
			Text:     result.Summary,
			Image:    result.Rendering,
			Decision: decision,
		}, nil

	default:
		answer, err := d.responder.Answer(ctx, text, conversationContext)
		if err != nil {
			return nil, err
		}
		return &pkg.DisplayableResult{
			Text:     answer,
			Decision: pkg.RouteGeneralChat,
		}, nil
	}
}
