package service

import (
	"context"
	"encoding/json"
	"log"

	"citizen-helpdesk-be/internal/dto"
	"citizen-helpdesk-be/pkg/rag/history"
	"citizen-helpdesk-be/pkg/suggestion"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	historyLoader *history.Loader
	manager       *suggestion.Manager
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	historyLoader *history.Loader,
	manager *suggestion.Manager,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		historyLoader: historyLoader,
		manager:       manager,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishCustomerMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// History is loaded here, not at publish time, so the message that
	// triggered this event is already part of the persisted transcript.
	turns, err := cs.historyLoader.LoadTurns(ctx, payload.ConversationId)
	if err != nil {
		log.Printf("[ERROR] Failed to load history for %s: %v", payload.ConversationId, err)
		msg.Nack()
		return
	}

	// The trailing unanswered turn is the question itself, not context.
	if n := len(turns); n > 0 && turns[n-1].Answer == "" && turns[n-1].Question == payload.Question {
		turns = turns[:n-1]
	}

	cs.manager.Trigger(ctx, payload.ConversationId, payload.Question, turns)
	msg.Ack()
}
