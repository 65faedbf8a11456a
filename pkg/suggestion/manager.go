package suggestion

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"citizen-helpdesk-be/internal/repository/memory"
	"citizen-helpdesk-be/pkg/events"
	"citizen-helpdesk-be/pkg/mode"
	"citizen-helpdesk-be/pkg/rag"
	"citizen-helpdesk-be/pkg/store"
)

// Runner executes one full answer pipeline. Satisfied by pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req *rag.Request) (*rag.Result, error)
}

// EventPublisher is the out-of-band notification sink. Satisfied by
// nats.Publisher; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	PollBaseDelay       time.Duration
	PollFactor          float64
	PollMaxDelay        time.Duration
	PollMaxAttempts     int
	RecoveryWindow      time.Duration
	RecoveryMaxAttempts int
}

func DefaultConfig() Config {
	return Config{
		PollBaseDelay:       200 * time.Millisecond,
		PollFactor:          2.0,
		PollMaxDelay:        2 * time.Second,
		PollMaxAttempts:     8,
		RecoveryWindow:      90 * time.Second,
		RecoveryMaxAttempts: 3,
	}
}

// Manager owns the per-conversation generation tokens and guarantees an agent
// is never shown a suggestion for a question the conversation has moved past.
// Cancellation is logical, not physical: a superseded token does not abort
// the in-flight generation, it only makes the result undeliverable. The
// correctness anchor is the token comparison at read time.
type Manager struct {
	states    *memory.SuggestionStateRepository
	runner    Runner
	modes     mode.Store
	publisher EventPublisher
	cfg       Config
	logger    *log.Logger

	locks sync.Map // conversationId string -> *sync.Mutex
}

func NewManager(
	states *memory.SuggestionStateRepository,
	runner Runner,
	modes mode.Store,
	publisher EventPublisher,
	cfg Config,
	logger *log.Logger,
) *Manager {
	if cfg.PollMaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	return &Manager{
		states:    states,
		runner:    runner,
		modes:     modes,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// lock returns the single-writer lock for one conversation. Two
// near-simultaneous triggers must not both believe they are current.
func (m *Manager) lock(conversationId uuid.UUID) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(conversationId.String(), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Trigger issues a fresh token for the conversation and starts the pipeline
// under it without blocking the caller. Outside HITL mode it is a no-op and
// returns uuid.Nil.
func (m *Manager) Trigger(ctx context.Context, conversationId uuid.UUID, question string, history []rag.Turn) uuid.UUID {
	if m.modes.Get(ctx) != mode.HITL {
		return uuid.Nil
	}

	token := uuid.New()
	now := time.Now()

	mu := m.lock(conversationId)
	mu.Lock()
	st, found := m.states.Get(conversationId.String())
	if !found {
		st = &store.SuggestionState{ConversationId: conversationId.String()}
	}
	st.CurrentToken = token
	st.LastCustomerMessageAt = now
	st.UpdatedAt = now
	m.states.Save(st)
	mu.Unlock()

	req := &rag.Request{
		Token:          token,
		ConversationId: conversationId,
		Question:       question,
		History:        history,
		CreatedAt:      now,
	}

	// Detached from the caller's request context: the HTTP request that
	// carried the customer message finishes long before generation does.
	go m.run(context.Background(), req)

	return token
}

func (m *Manager) run(ctx context.Context, req *rag.Request) {
	result, err := m.runner.Run(ctx, req)
	if err != nil {
		// Only pre-pipeline validation reaches here; nothing to store.
		m.logger.Printf("[SUGGESTION] Pipeline rejected request for %s: %v", req.ConversationId, err)
		return
	}

	mu := m.lock(req.ConversationId)
	mu.Lock()
	st, found := m.states.Get(req.ConversationId.String())
	if !found {
		// State was flushed (mode left HITL) while we were generating.
		mu.Unlock()
		m.logger.Printf("[SUGGESTION] Discarding result for %s: state gone", req.ConversationId)
		return
	}
	current := st.CurrentToken
	if current == req.Token {
		// A stale completion must not overwrite a newer result; the
		// read-time token check stays the authoritative delivery gate.
		st.Result = result
		st.ResultToken = req.Token
		st.UpdatedAt = time.Now()
		m.states.Save(st)
	}
	mu.Unlock()

	if m.publisher == nil {
		return
	}
	// Best-effort dashboard ping. Delivery correctness does not depend on it;
	// the read-time token check is the only gate.
	var ev events.Event
	if current == req.Token {
		ev = events.NewSuggestionReadyEvent(req.ConversationId, req.Token, string(result.Outcome))
	} else {
		ev = events.NewSuggestionSupersededEvent(req.ConversationId, req.Token)
	}
	if err := m.publisher.Publish(ctx, ev); err != nil {
		m.logger.Printf("[SUGGESTION] Event publish failed: %v", err)
	}
}

// Invalidate issues a new token without starting a generation. Called on
// every agent-authored reply: any in-flight or stored-but-undelivered
// suggestion for the prior question becomes undeliverable immediately.
func (m *Manager) Invalidate(conversationId uuid.UUID) {
	mu := m.lock(conversationId)
	mu.Lock()
	defer mu.Unlock()

	st, found := m.states.Get(conversationId.String())
	if !found {
		st = &store.SuggestionState{ConversationId: conversationId.String()}
	}
	st.CurrentToken = uuid.New()
	st.UpdatedAt = time.Now()
	m.states.Save(st)
}

// Pending performs the read-time delivery check. The stored result is
// returned only if its token still equals the conversation's current token;
// a stale result is dropped and treated as "no suggestion yet". Outside HITL
// mode delivery is suppressed entirely.
func (m *Manager) Pending(ctx context.Context, conversationId uuid.UUID) *rag.Result {
	if m.modes.Get(ctx) != mode.HITL {
		return nil
	}

	mu := m.lock(conversationId)
	mu.Lock()
	defer mu.Unlock()

	st, found := m.states.Get(conversationId.String())
	if !found || st.Result == nil {
		return nil
	}
	if st.ResultToken != st.CurrentToken {
		// Stale: computed for a question the conversation moved past.
		st.Result = nil
		m.states.Save(st)
		m.logger.Printf("[SUGGESTION] Dropped stale result for %s", conversationId)
		return nil
	}
	return st.Result
}

// Await polls Pending with exponential backoff, delay(i) = min(base*factor^i,
// cap), for at most PollMaxAttempts attempts. Exhaustion resolves to nil
// ("no suggestion available"), never an error.
func (m *Manager) Await(ctx context.Context, conversationId uuid.UUID) *rag.Result {
	return m.poll(ctx, conversationId, m.cfg.PollMaxAttempts)
}

// Recover handles conversation reselection: an already-stored deliverable
// result wins immediately; otherwise, if the last customer message is within
// the freshness window a generation may still be running, so poll again with
// the shorter attempt budget.
func (m *Manager) Recover(ctx context.Context, conversationId uuid.UUID) *rag.Result {
	if res := m.Pending(ctx, conversationId); res != nil {
		return res
	}

	st, found := m.states.Get(conversationId.String())
	if !found {
		return nil
	}
	if time.Since(st.LastCustomerMessageAt) > m.cfg.RecoveryWindow {
		return nil
	}
	return m.poll(ctx, conversationId, m.cfg.RecoveryMaxAttempts)
}

func (m *Manager) poll(ctx context.Context, conversationId uuid.UUID, maxAttempts int) *rag.Result {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.PollBaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = m.cfg.PollFactor
	bo.MaxInterval = m.cfg.PollMaxDelay
	bo.Reset()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if res := m.Pending(ctx, conversationId); res != nil {
			return res
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(bo.NextBackOff()):
		}
	}

	m.logger.Printf("[SUGGESTION] Polling exhausted for %s after %d attempts", conversationId, maxAttempts)
	return nil
}

// Flush clears all conversation state. Called when the global mode leaves
// HITL; in-flight generations are not aborted, they complete and are simply
// never read.
func (m *Manager) Flush() {
	m.states.Flush()
}
