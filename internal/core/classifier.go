package core

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// Classifier decides which route a user message takes.
type Classifier interface {
	Classify(ctx context.Context, text string) (pkg.RoutingDecision, error)
}

// RuleClassifier routes on keyword cues plus session state. Edit cues win
// over plan cues when a rendering exists to edit.
type RuleClassifier struct {
	editKeywords []string
	planKeywords []string
	images       store.ImageStore
}

func NewRuleClassifier(editKeywords, planKeywords []string, images store.ImageStore) *RuleClassifier {
	return &RuleClassifier{
		editKeywords: editKeywords,
		planKeywords: planKeywords,
		images:       images,
	}
}

func (c *RuleClassifier) Classify(ctx context.Context, text string) (pkg.RoutingDecision, error) {
	lowered := strings.ToLower(text)

	if containsAny(lowered, c.editKeywords) {
		rendered, err := c.images.GetLatest(ctx, pkg.RoleRendered)
		if err != nil {
			return pkg.RouteGeneralChat, err
		}
		if rendered != nil {
			return pkg.RouteEditRequest, nil
		}
		// Edit phrasing with nothing to edit: a plan cue means the user is
		// really starting a project; otherwise let the editor report the
		// missing rendering.
		if containsAny(lowered, c.planKeywords) {
			return pkg.RouteNewProject, nil
		}
		return pkg.RouteEditRequest, nil
	}

	if containsAny(lowered, c.planKeywords) {
		return pkg.RouteNewProject, nil
	}

	return pkg.RouteGeneralChat, nil
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

const classifySystemPrompt = `You are the routing coordinator of an AI home renovation planner.
Classify the user's message into exactly one category:

- general-chat: greetings, questions about renovation topics or the service itself.
- edit-request: the user asks to change something in a rendering that was already generated in this session.
- new-project-request: the user wants to start planning a renovation of a room.

Session state: {session_state}

Respond with only the category name.`

// LLMClassifier asks the chat model for a routing decision and falls back
// to rule classification when the model fails or answers off-script.
type LLMClassifier struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	images   store.ImageStore
	fallback *RuleClassifier
}

func NewLLMClassifier(ctx context.Context, chatModel model.BaseChatModel, images store.ImageStore, fallback *RuleClassifier) (*LLMClassifier, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(classifySystemPrompt),
		schema.UserMessage("{user_message}"),
	)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, err
	}

	return &LLMClassifier{chain: chain, images: images, fallback: fallback}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (pkg.RoutingDecision, error) {
	state := "no rendering has been generated yet"
	if rendered, err := c.images.GetLatest(ctx, pkg.RoleRendered); err == nil && rendered != nil {
		state = "a rendering exists and can be edited"
	}

	out, err := c.chain.Invoke(ctx, map[string]any{
		"session_state": state,
		"user_message":  text,
	})
	if err != nil {
		log.Warn().Err(err).Msg("llm classification failed, using rule classifier")
		return c.fallback.Classify(ctx, text)
	}

	decision := parseDecision(out.Content)
	if decision == "" {
		log.Warn().Str("response", out.Content).Msg("unparseable classification, using rule classifier")
		return c.fallback.Classify(ctx, text)
	}

	// The model cannot see the image store; an edit decision with nothing
	// to edit is re-checked against the rules.
	if decision == pkg.RouteEditRequest {
		rendered, err := c.images.GetLatest(ctx, pkg.RoleRendered)
		if err == nil && rendered == nil {
			return c.fallback.Classify(ctx, text)
		}
	}

	return decision, nil
}

func parseDecision(content string) pkg.RoutingDecision {
	normalized := strings.ToLower(strings.TrimSpace(content))
	switch {
	case strings.Contains(normalized, string(pkg.RouteEditRequest)):
		return pkg.RouteEditRequest
	case strings.Contains(normalized, string(pkg.RouteNewProject)):
		return pkg.RouteNewProject
	case strings.Contains(normalized, string(pkg.RouteGeneralChat)):
		return pkg.RouteGeneralChat
	default:
		return ""
	}
}
