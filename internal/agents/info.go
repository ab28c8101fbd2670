package agents

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"renoplanner/pkg"
)

const infoSystemPrompt = `You are the Info Agent for an AI home renovation planner.
Answer general questions and greetings briefly, in 2-4 sentences.
The system can analyze photos of a current space and inspiration images,
produce a design plan with budget and timeline, and generate photorealistic
renderings that can be refined with follow-up requests.
If the user seems ready to start, ask which room they want to renovate and
whether they can share photos. Never invent renovation results.`

// InfoAgent answers general renovation questions. Stateless; it reads the
// conversation context it is handed and never touches the image store.
type InfoAgent struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewInfoAgent builds the template-to-model chain for general chat.
func NewInfoAgent(ctx context.Context, chatModel model.BaseChatModel) (*InfoAgent, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(infoSystemPrompt),
		schema.UserMessage("{conversation_context}\n\n{user_message}"),
	)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, err
	}

	return &InfoAgent{chain: chain}, nil
}

// Answer responds to a general request from context and general knowledge.
func (a *InfoAgent) Answer(ctx context.Context, text, conversationContext string) (string, error) {
	out, err := a.chain.Invoke(ctx, map[string]any{
		"conversation_context": conversationContext,
		"user_message":         text,
	})
	if err != nil {
		return "", &pkg.InferenceError{Op: "chat", Err: err}
	}
	return out.Content, nil
}
