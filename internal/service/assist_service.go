package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/internal/dto"
	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/pkg/logger"
	"citizen-helpdesk-be/internal/repository/specification"
	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/pkg/events"
	"citizen-helpdesk-be/pkg/mode"
	"citizen-helpdesk-be/pkg/rag"
	"citizen-helpdesk-be/pkg/rag/history"
	"citizen-helpdesk-be/pkg/rag/pipeline"
	"citizen-helpdesk-be/pkg/suggestion"

	"github.com/google/uuid"
)

// IAssistService is the agent-assist surface: synchronous answer generation,
// the customer/agent message hooks that drive the suggestion lifecycle, and
// the global mode switch.
type IAssistService interface {
	GenerateAnswer(ctx context.Context, request *dto.GenerateAnswerRequest) (*dto.GenerateAnswerResponse, error)
	OnCustomerMessage(ctx context.Context, conversationId uuid.UUID, request *dto.CustomerMessageRequest) (*dto.CustomerMessageResponse, error)
	OnAgentMessage(ctx context.Context, conversationId uuid.UUID, request *dto.AgentMessageRequest) (*dto.AgentMessageResponse, error)
	GetSuggestion(ctx context.Context, conversationId uuid.UUID) (*dto.SuggestionResponse, error)
	PollSuggestion(ctx context.Context, conversationId uuid.UUID) (*dto.SuggestionResponse, error)
	GetHistory(ctx context.Context, conversationId uuid.UUID) (*dto.GetHistoryResponse, error)
	SetMode(ctx context.Context, request *dto.SetModeRequest) error
	GetMode(ctx context.Context) *dto.GetModeResponse
}

type assistService struct {
	uowFactory       unitofwork.RepositoryFactory
	orchestrator     *pipeline.Orchestrator
	manager          *suggestion.Manager
	historyLoader    *history.Loader
	modes            mode.Store
	publisherService IPublisherService
	eventPublisher   suggestion.EventPublisher
	logger           logger.ILogger
}

func NewAssistService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *pipeline.Orchestrator,
	manager *suggestion.Manager,
	historyLoader *history.Loader,
	modes mode.Store,
	publisherService IPublisherService,
	eventPublisher suggestion.EventPublisher,
	log logger.ILogger,
) IAssistService {
	return &assistService{
		uowFactory:       uowFactory,
		orchestrator:     orchestrator,
		manager:          manager,
		historyLoader:    historyLoader,
		modes:            modes,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

var _ IAssistService = &assistService{}

// GenerateAnswer runs one full pipeline synchronously. Used by the operator
// debug endpoint and by autopilot callers that want the answer inline.
func (s *assistService) GenerateAnswer(ctx context.Context, request *dto.GenerateAnswerRequest) (*dto.GenerateAnswerResponse, error) {
	turns := toTurns(request.History)
	if len(turns) == 0 && request.ConversationId != uuid.Nil {
		loaded, err := s.historyLoader.LoadTurns(ctx, request.ConversationId)
		if err != nil {
			s.logger.Warn("AssistService", "History load failed, generating without history", map[string]interface{}{
				"conversation_id": request.ConversationId.String(),
				"error":           err.Error(),
			})
		} else {
			turns = loaded
		}
	}

	result, err := s.orchestrator.Run(ctx, &rag.Request{
		Token:          uuid.New(),
		ConversationId: request.ConversationId,
		Question:       request.Question,
		History:        turns,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.GenerateAnswerResponse{
		Answer:       result.Answer,
		Sources:      result.Sources,
		SourceUrls:   result.SourceUrls,
		ContextsUsed: result.ContextsUsed,
		Outcome:      string(result.Outcome),
		Trace:        result.Trace,
	}, nil
}

// OnCustomerMessage persists the incoming message and hands generation off to
// the message bus. The HTTP caller never waits on the pipeline.
func (s *assistService) OnCustomerMessage(ctx context.Context, conversationId uuid.UUID, request *dto.CustomerMessageRequest) (*dto.CustomerMessageResponse, error) {
	msg, err := s.appendMessage(ctx, conversationId, constant.MessageRoleCitizen, request.Message)
	if err != nil {
		return nil, err
	}

	accepted := s.modes.Get(ctx) == mode.HITL
	if accepted {
		payload, err := json.Marshal(dto.PublishCustomerMessage{
			ConversationId: conversationId,
			MessageId:      msg.Id,
			Question:       request.Message,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal customer message payload: %w", err)
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			// The message is already persisted; a bus failure only costs the
			// suggestion for this turn.
			s.logger.Error("AssistService", "Failed to publish customer message", map[string]interface{}{
				"conversation_id": conversationId.String(),
				"error":           err.Error(),
			})
			accepted = false
		}
	}

	return &dto.CustomerMessageResponse{
		ConversationId: conversationId,
		MessageId:      msg.Id,
		Accepted:       accepted,
	}, nil
}

// OnAgentMessage persists the agent reply and invalidates the conversation's
// generation token. Whatever was being prepared for the previous question is
// no longer deliverable.
func (s *assistService) OnAgentMessage(ctx context.Context, conversationId uuid.UUID, request *dto.AgentMessageRequest) (*dto.AgentMessageResponse, error) {
	msg, err := s.appendMessage(ctx, conversationId, constant.MessageRoleAgent, request.Message)
	if err != nil {
		return nil, err
	}

	s.manager.Invalidate(conversationId)

	return &dto.AgentMessageResponse{
		ConversationId: conversationId,
		MessageId:      msg.Id,
	}, nil
}

// GetSuggestion is the reselection read: a stored deliverable result wins
// immediately, and a short poll covers a generation that may still be running.
// nil response body means "no suggestion".
func (s *assistService) GetSuggestion(ctx context.Context, conversationId uuid.UUID) (*dto.SuggestionResponse, error) {
	return toSuggestionResponse(conversationId, s.manager.Recover(ctx, conversationId)), nil
}

// PollSuggestion waits for a suggestion with the full bounded backoff budget.
func (s *assistService) PollSuggestion(ctx context.Context, conversationId uuid.UUID) (*dto.SuggestionResponse, error) {
	return toSuggestionResponse(conversationId, s.manager.Await(ctx, conversationId)), nil
}

func (s *assistService) GetHistory(ctx context.Context, conversationId uuid.UUID) (*dto.GetHistoryResponse, error) {
	turns, err := s.historyLoader.LoadTurns(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	dtoTurns := make([]dto.HistoryTurnDTO, len(turns))
	for i, t := range turns {
		dtoTurns[i] = dto.HistoryTurnDTO{Question: t.Question, Answer: t.Answer}
	}
	return &dto.GetHistoryResponse{
		ConversationId: conversationId,
		Turns:          dtoTurns,
	}, nil
}

// SetMode switches the global assistance mode. Leaving HITL flushes all
// suggestion state so nothing generated under the old mode can surface later.
func (s *assistService) SetMode(ctx context.Context, request *dto.SetModeRequest) error {
	newMode, err := mode.Parse(request.Mode)
	if err != nil {
		return &rag.ValidationError{Field: "mode", Message: err.Error()}
	}

	oldMode := s.modes.Get(ctx)
	if err := s.modes.Set(ctx, newMode); err != nil {
		return err
	}

	if oldMode == mode.HITL && newMode != mode.HITL {
		s.manager.Flush()
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewModeChangedEvent(string(oldMode), string(newMode))); err != nil {
			s.logger.Warn("AssistService", "Failed to publish mode change", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.logger.Info("AssistService", "Assistance mode changed", map[string]interface{}{
		"old_mode": string(oldMode),
		"new_mode": string(newMode),
	})
	return nil
}

func (s *assistService) GetMode(ctx context.Context) *dto.GetModeResponse {
	return &dto.GetModeResponse{Mode: string(s.modes.Get(ctx))}
}

// appendMessage ensures the conversation row exists and appends one message
// to its transcript, both inside a single transaction.
func (s *assistService) appendMessage(ctx context.Context, conversationId uuid.UUID, role, content string) (*entity.ConversationMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	conv, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &entity.Conversation{
			Id:        conversationId,
			Status:    "open",
			CreatedAt: time.Now(),
		}
		if err := uow.ConversationRepository().Create(ctx, conv); err != nil {
			return nil, err
		}
	}

	msg := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := uow.ConversationMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return msg, nil
}

func toTurns(history []dto.HistoryTurnDTO) []rag.Turn {
	turns := make([]rag.Turn, len(history))
	for i, h := range history {
		turns[i] = rag.Turn{Question: h.Question, Answer: h.Answer}
	}
	return turns
}

func toSuggestionResponse(conversationId uuid.UUID, result *rag.Result) *dto.SuggestionResponse {
	if result == nil {
		return nil
	}
	return &dto.SuggestionResponse{
		ConversationId: conversationId,
		Suggestion:     result.Answer,
		Sources:        result.Sources,
		SourceUrls:     result.SourceUrls,
		ContextsUsed:   result.ContextsUsed,
		Outcome:        string(result.Outcome),
		GeneratedAt:    result.CreatedAt,
		Trace:          result.Trace,
	}
}
