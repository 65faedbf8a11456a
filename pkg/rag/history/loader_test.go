package history

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/repository/contract"
	"citizen-helpdesk-be/internal/repository/specification"
	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/pkg/rag"

	"github.com/google/uuid"
)

type fakeMessageRepository struct {
	messages []*entity.ConversationMessage
	err      error
}

func (f *fakeMessageRepository) Create(ctx context.Context, message *entity.ConversationMessage) error {
	return nil
}

func (f *fakeMessageRepository) CreateBulk(ctx context.Context, messages []*entity.ConversationMessage) error {
	return nil
}

func (f *fakeMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeMessageRepository) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return nil
}

func (f *fakeMessageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationMessage, error) {
	return nil, nil
}

func (f *fakeMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error) {
	return f.messages, f.err
}

func (f *fakeMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.messages)), nil
}

type fakeUnitOfWork struct {
	messages contract.ConversationMessageRepository
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository { return nil }
func (f *fakeUnitOfWork) ConversationMessageRepository() contract.ConversationMessageRepository {
	return f.messages
}
func (f *fakeUnitOfWork) KbDocumentRepository() contract.KbDocumentRepository { return nil }
func (f *fakeUnitOfWork) KbChunkRepository() contract.KbChunkRepository       { return nil }

type fakeFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newLoaderWith(messages []*entity.ConversationMessage) *Loader {
	repo := &fakeMessageRepository{messages: messages}
	return NewLoader(&fakeFactory{uow: &fakeUnitOfWork{messages: repo}})
}

func msg(role, content string) *entity.ConversationMessage {
	return &entity.ConversationMessage{Id: uuid.New(), Role: role, Content: content}
}

func TestLoadTurnsFolding(t *testing.T) {
	tests := []struct {
		name     string
		messages []*entity.ConversationMessage
		want     []rag.Turn
	}{
		{
			name:     "empty conversation",
			messages: nil,
			want:     []rag.Turn{},
		},
		{
			name: "question answer pairs",
			messages: []*entity.ConversationMessage{
				msg(constant.MessageRoleCitizen, "How do I renew my passport?"),
				msg(constant.MessageRoleAgent, "Bring it to any office."),
				msg(constant.MessageRoleCitizen, "How long does it take?"),
				msg(constant.MessageRoleBot, "Ten working days."),
			},
			want: []rag.Turn{
				{Question: "How do I renew my passport?", Answer: "Bring it to any office."},
				{Question: "How long does it take?", Answer: "Ten working days."},
			},
		},
		{
			name: "unanswered trailing question",
			messages: []*entity.ConversationMessage{
				msg(constant.MessageRoleCitizen, "How do I renew my passport?"),
				msg(constant.MessageRoleAgent, "Bring it to any office."),
				msg(constant.MessageRoleCitizen, "How long does it take?"),
			},
			want: []rag.Turn{
				{Question: "How do I renew my passport?", Answer: "Bring it to any office."},
				{Question: "How long does it take?"},
			},
		},
		{
			name: "consecutive citizen messages each get a turn",
			messages: []*entity.ConversationMessage{
				msg(constant.MessageRoleCitizen, "How do I renew my passport?"),
				msg(constant.MessageRoleCitizen, "Also, how much does it cost?"),
				msg(constant.MessageRoleAgent, "Renewal is 80 euros."),
			},
			want: []rag.Turn{
				{Question: "How do I renew my passport?"},
				{Question: "Also, how much does it cost?", Answer: "Renewal is 80 euros."},
			},
		},
		{
			name: "reply with no preceding question is dropped",
			messages: []*entity.ConversationMessage{
				msg(constant.MessageRoleAgent, "Welcome, how can I help?"),
				msg(constant.MessageRoleCitizen, "How do I renew my passport?"),
			},
			want: []rag.Turn{
				{Question: "How do I renew my passport?"},
			},
		},
		{
			name: "blank messages skipped",
			messages: []*entity.ConversationMessage{
				msg(constant.MessageRoleCitizen, "   "),
				msg(constant.MessageRoleCitizen, "How do I renew my passport?"),
				msg(constant.MessageRoleAgent, "\n\t"),
				msg(constant.MessageRoleAgent, "Bring it to any office."),
			},
			want: []rag.Turn{
				{Question: "How do I renew my passport?", Answer: "Bring it to any office."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoaderWith(tt.messages)
			got, err := l.LoadTurns(context.Background(), uuid.New())
			if err != nil {
				t.Fatalf("LoadTurns() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("turns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadTurnsKeepsMostRecent(t *testing.T) {
	var messages []*entity.ConversationMessage
	for i := 0; i < 15; i++ {
		messages = append(messages,
			msg(constant.MessageRoleCitizen, fmt.Sprintf("question %d", i)),
			msg(constant.MessageRoleAgent, fmt.Sprintf("answer %d", i)),
		)
	}
	l := newLoaderWith(messages)

	turns, err := l.LoadTurns(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LoadTurns() error = %v", err)
	}
	if len(turns) != DefaultTurnLimit {
		t.Fatalf("len(turns) = %d, want %d", len(turns), DefaultTurnLimit)
	}
	if turns[0].Question != "question 5" {
		t.Errorf("oldest kept turn = %q, want question 5", turns[0].Question)
	}
	if turns[len(turns)-1].Question != "question 14" {
		t.Errorf("newest kept turn = %q, want question 14", turns[len(turns)-1].Question)
	}
}
