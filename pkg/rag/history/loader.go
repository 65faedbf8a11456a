package history

import (
	"context"
	"strings"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/internal/repository/specification"
	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/pkg/rag"

	"github.com/google/uuid"
)

// DefaultTurnLimit caps how many question/answer turns are fed to the
// pipeline. Older turns rarely help the rephraser and inflate prompts.
const DefaultTurnLimit = 10

// Loader folds persisted conversation messages into ordered turns.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
	turnLimit  int
}

func NewLoader(uowFactory unitofwork.RepositoryFactory) *Loader {
	return &Loader{
		uowFactory: uowFactory,
		turnLimit:  DefaultTurnLimit,
	}
}

// LoadTurns loads the conversation transcript and pairs each citizen message
// with the reply that followed it. A citizen message without a reply yet
// becomes a turn with an empty answer; consecutive citizen messages each get
// their own turn.
func (l *Loader) LoadTurns(ctx context.Context, conversationId uuid.UUID) ([]rag.Turn, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]rag.Turn, 0, len(messages)/2+1)
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}

		switch msg.Role {
		case constant.MessageRoleCitizen:
			turns = append(turns, rag.Turn{Question: content})
		case constant.MessageRoleAgent, constant.MessageRoleBot:
			if len(turns) > 0 && turns[len(turns)-1].Answer == "" {
				turns[len(turns)-1].Answer = content
			}
		}
	}

	if len(turns) > l.turnLimit {
		turns = turns[len(turns)-l.turnLimit:]
	}
	return turns, nil
}
