package session

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"renoplanner/internal/conversation"
	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// Upload is an image attached to a user message.
type Upload struct {
	Name     string
	Role     pkg.ImageRole
	MimeType string
	Data     []byte
}

// Dispatcher routes one classified message to its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, text, conversationContext string) (*pkg.DisplayableResult, error)
}

// Session ties one conversation to its image store and dispatcher. Messages
// within a session are processed one at a time.
type Session struct {
	id         string
	dispatcher Dispatcher
	conv       conversation.Repository
	strategy   conversation.ContextStrategy
	images     store.ImageStore

	mu sync.Mutex
}

func New(dispatcher Dispatcher, conv conversation.Repository, strategy conversation.ContextStrategy, images store.ImageStore) *Session {
	return &Session{
		id:         uuid.NewString(),
		dispatcher: dispatcher,
		conv:       conv,
		strategy:   strategy,
		images:     images,
	}
}

func (s *Session) ID() string { return s.id }

// HandleUserMessage stores any uploads, routes the message, and commits
// both turns to the conversation. A cancelled context commits nothing after
// the point of cancellation.
func (s *Session) HandleUserMessage(ctx context.Context, text string, uploads []Upload) (*pkg.DisplayableResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, up := range uploads {
		role := up.Role
		if role == "" {
			role = pkg.RoleCurrentRoom
		}
		asset := &pkg.ImageAsset{
			Name:     up.Name,
			Role:     role,
			MimeType: up.MimeType,
			Data:     up.Data,
		}
		if _, err := s.images.Put(ctx, asset); err != nil {
			return nil, err
		}
		log.Info().Str("name", up.Name).Str("role", string(role)).Msg("image uploaded")
	}

	conversationContext, err := s.conv.ContextForModel(ctx, s.id, s.strategy)
	if err != nil {
		log.Warn().Err(err).Msg("conversation context unavailable, continuing without it")
		conversationContext = ""
	}

	result, err := s.dispatcher.Dispatch(ctx, text, conversationContext)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.conv.AddMessage(ctx, s.id, schema.UserMessage(text)); err != nil {
		log.Warn().Err(err).Msg("failed to record user turn")
	}
	if err := s.conv.AddMessage(ctx, s.id, schema.AssistantMessage(result.Text, nil)); err != nil {
		log.Warn().Err(err).Msg("failed to record assistant turn")
	}

	return result, nil
}

// Renderings returns the latest version of every rendering in the session.
func (s *Session) Renderings(ctx context.Context) ([]*pkg.ImageAsset, error) {
	return s.images.List(ctx, pkg.RoleRendered)
}

// References returns the latest uploaded current-room and inspiration images.
func (s *Session) References(ctx context.Context) ([]*pkg.ImageAsset, error) {
	rooms, err := s.images.List(ctx, pkg.RoleCurrentRoom)
	if err != nil {
		return nil, err
	}
	insp, err := s.images.List(ctx, pkg.RoleInspiration)
	if err != nil {
		return nil, err
	}
	return append(rooms, insp...), nil
}
