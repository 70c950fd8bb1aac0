package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/telemetry"
)

// SystemPersona is the fixed persona of every assembled prompt's system
// message.
const SystemPersona = "You are RiskPilot, an AI Risk Intelligence System."

// Completer defines the interface for the completion client
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Retriever defines the interface for best-effort context retrieval
type Retriever interface {
	Retrieve(ctx context.Context, projectID, query string) []string
}

// ResponseCache defines the interface for the response cache
type ResponseCache interface {
	Get(ctx context.Context, projectID, query string) (string, bool)
	Put(ctx context.Context, projectID, query, response string)
}

// ConversationStore defines the repository interface for chat history
type ConversationStore interface {
	Append(ctx context.Context, turn *domain.ConversationTurn) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.ConversationTurn, error)
}

// ChatResult is one answered chat request. Cached distinguishes a cache hit
// from a fresh completion.
type ChatResult struct {
	Response string
	Cached   bool
}

// ChatService orchestrates one chat request:
// cache lookup, context retrieval, prompt assembly, completion, cache write.
// It is the error boundary for the whole chat path: external failures are
// collapsed into user-visible text here and never crash the request.
type ChatService struct {
	cache     ResponseCache
	retriever Retriever
	completer Completer
	turns     ConversationStore
}

func NewChatService(cache ResponseCache, retriever Retriever, completer Completer, turns ConversationStore) *ChatService {
	return &ChatService{
		cache:     cache,
		retriever: retriever,
		completer: completer,
		turns:     turns,
	}
}

// Chat answers one user message within a project scope. No step retries; a
// failure in retrieval degrades to empty context, a failure in completion
// becomes the response text, and cache or history write failures are logged
// without affecting the answer.
func (s *ChatService) Chat(ctx context.Context, projectID, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, domain.ErrEmptyMessage
	}

	ctx, span := telemetry.StartSpan(ctx, "ChatService.Chat", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "chat",
	})
	defer span.End()

	if cached, ok := s.cache.Get(ctx, projectID, message); ok {
		telemetry.AddBreadcrumb(ctx, "cache", "response cache hit")
		return &ChatResult{Response: cached, Cached: true}, nil
	}

	contexts := s.retriever.Retrieve(ctx, projectID, message)

	history, err := s.turns.ListByProject(ctx, projectID)
	if err != nil {
		log.Printf("chat: history load failed (project %s), continuing without history: %v", projectID, err)
		history = nil
	}

	messages := AssembleMessages(contexts, history, message)

	response, err := s.completer.Complete(ctx, messages)
	succeeded := err == nil
	if err != nil {
		span.SetError(err)
		response = completionErrorText(err)
	}

	if succeeded {
		s.cache.Put(ctx, projectID, message, response)
	}

	turn := &domain.ConversationTurn{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Origin:    domain.TurnOriginUser,
		Message:   message,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.turns.Append(ctx, turn); err != nil {
		log.Printf("chat: failed to persist turn (project %s): %v", projectID, err)
	}

	return &ChatResult{Response: response, Cached: false}, nil
}

// History returns a project's turns in chronological order.
func (s *ChatService) History(ctx context.Context, projectID string) ([]*domain.ConversationTurn, error) {
	return s.turns.ListByProject(ctx, projectID)
}

// AssembleMessages builds the ordered message sequence: one system message
// carrying the persona and retrieved context, the full conversation history
// with each turn contributing a user and an assistant message (empty fields
// skipped), then the new user message.
func AssembleMessages(contexts []string, history []*domain.ConversationTurn, userMessage string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, 2*len(history)+2)

	messages = append(messages, domain.ChatMessage{
		Role:    domain.ChatRoleSystem,
		Content: fmt.Sprintf("%s\nProject Context:\n%s", SystemPersona, strings.Join(contexts, "\n")),
	})

	for _, turn := range history {
		if turn == nil {
			continue
		}
		if turn.Message != "" {
			messages = append(messages, domain.ChatMessage{Role: domain.ChatRoleUser, Content: turn.Message})
		}
		if turn.Response != "" {
			messages = append(messages, domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: turn.Response})
		}
	}

	return append(messages, domain.ChatMessage{Role: domain.ChatRoleUser, Content: userMessage})
}

// completionErrorText collapses a completion failure into the text shown to
// the user. Callers always get something displayable.
func completionErrorText(err error) string {
	if errors.Is(err, domain.ErrLLMNotConfigured) {
		return "Error: AI not configured. Please set RISKPILOT_LLM_API_KEY."
	}
	return fmt.Sprintf("Error generating response: %v", err)
}
