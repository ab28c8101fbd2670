package conversation

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ContextStrategy renders conversation history into a context block for a
// model prompt.
type ContextStrategy interface {
	BuildContext(messages []*schema.Message) string
	GetMaxTurns() int
}

// RecentTurnsStrategy keeps the last N turns.
type RecentTurnsStrategy struct {
	maxTurns int
}

func NewRecentTurnsStrategy(maxTurns int) *RecentTurnsStrategy {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &RecentTurnsStrategy{maxTurns: maxTurns}
}

func (s *RecentTurnsStrategy) GetMaxTurns() int {
	return s.maxTurns
}

func (s *RecentTurnsStrategy) BuildContext(messages []*schema.Message) string {
	recent := trimTail(messages, s.maxTurns)

	var b strings.Builder
	b.WriteString("<conversation_history>\n")
	for _, msg := range recent {
		switch msg.Role {
		case schema.User:
			b.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			b.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	b.WriteString("</conversation_history>")
	return b.String()
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
