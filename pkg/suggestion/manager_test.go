package suggestion

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"citizen-helpdesk-be/internal/repository/memory"
	"citizen-helpdesk-be/pkg/events"
	"citizen-helpdesk-be/pkg/mode"
	"citizen-helpdesk-be/pkg/rag"
)

// fakeRunner completes instantly unless release is set, in which case each run
// blocks until the channel is closed.
type fakeRunner struct {
	release chan struct{}

	mu   sync.Mutex
	runs []*rag.Request
}

func (f *fakeRunner) Run(ctx context.Context, req *rag.Request) (*rag.Result, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.runs = append(f.runs, req)
	f.mu.Unlock()
	return &rag.Result{
		Token:          req.Token,
		ConversationId: req.ConversationId,
		Answer:         "Renewals take ten working days.",
		Sources:        []string{},
		SourceUrls:     []string{},
		Outcome:        rag.OutcomeSuccess,
		CreatedAt:      time.Now(),
	}, nil
}

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}

func testConfig() Config {
	return Config{
		PollBaseDelay:       time.Millisecond,
		PollFactor:          2.0,
		PollMaxDelay:        5 * time.Millisecond,
		PollMaxAttempts:     20,
		RecoveryWindow:      time.Minute,
		RecoveryMaxAttempts: 5,
	}
}

func newTestManager(runner Runner, publisher EventPublisher, initial mode.Mode) (*Manager, *mode.MemoryStore) {
	modes := mode.NewMemoryStore(initial)
	m := NewManager(
		memory.NewSuggestionStateRepository(),
		runner,
		modes,
		publisher,
		testConfig(),
		log.New(io.Discard, "", 0),
	)
	return m, modes
}

func TestTriggerAndAwaitDeliversResult(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	token := m.Trigger(context.Background(), convId, "How long does renewal take?", nil)
	if token == uuid.Nil {
		t.Fatal("Trigger returned uuid.Nil in hitl mode")
	}

	res := m.Await(context.Background(), convId)
	if res == nil {
		t.Fatal("Await returned nil, want the generated result")
	}
	if res.Token != token {
		t.Errorf("result token = %s, want %s", res.Token, token)
	}
	if runner.runCount() != 1 {
		t.Errorf("run count = %d, want 1", runner.runCount())
	}
}

func TestTriggerSuppressedOutsideHITL(t *testing.T) {
	for _, md := range []mode.Mode{mode.Autopilot, mode.Off} {
		runner := &fakeRunner{}
		m, _ := newTestManager(runner, nil, md)
		convId := uuid.New()

		if token := m.Trigger(context.Background(), convId, "question", nil); token != uuid.Nil {
			t.Errorf("mode %s: Trigger returned %s, want uuid.Nil", md, token)
		}
		if res := m.Await(context.Background(), convId); res != nil {
			t.Errorf("mode %s: Await returned a result, want nil", md)
		}
		if runner.runCount() != 0 {
			t.Errorf("mode %s: pipeline ran %d times, want 0", md, runner.runCount())
		}
	}
}

func TestSecondTriggerSupersedesFirst(t *testing.T) {
	release := make(chan struct{})
	runner := &fakeRunner{release: release}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "first question", nil)
	second := m.Trigger(context.Background(), convId, "second question", nil)
	close(release)

	res := m.Await(context.Background(), convId)
	if res == nil {
		t.Fatal("Await returned nil, want the result for the second token")
	}
	if res.Token != second {
		t.Errorf("delivered token = %s, want the second trigger's %s", res.Token, second)
	}
}

func TestInvalidateMakesResultUndeliverable(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)
	if res := m.Await(context.Background(), convId); res == nil {
		t.Fatal("precondition failed: no result before invalidation")
	}

	m.Invalidate(convId)

	if res := m.Pending(context.Background(), convId); res != nil {
		t.Error("Pending returned a result after Invalidate, want nil")
	}
	// The stale result is dropped on first read, not merely hidden.
	if res := m.Pending(context.Background(), convId); res != nil {
		t.Error("stale result still present on second read")
	}
}

func TestPendingSuppressedOutsideHITL(t *testing.T) {
	runner := &fakeRunner{}
	m, modes := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)
	if res := m.Await(context.Background(), convId); res == nil {
		t.Fatal("precondition failed: no result stored")
	}

	modes.Set(context.Background(), mode.Off)
	if res := m.Pending(context.Background(), convId); res != nil {
		t.Error("Pending returned a result in off mode, want nil")
	}

	modes.Set(context.Background(), mode.HITL)
	if res := m.Pending(context.Background(), convId); res == nil {
		t.Error("result lost after temporary mode change, want it still deliverable")
	}
}

func TestAwaitExhaustionReturnsNil(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	runner := &fakeRunner{release: release}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)

	// The runner never completes within the poll budget.
	if res := m.Await(context.Background(), convId); res != nil {
		t.Error("Await returned a result while generation was still blocked, want nil")
	}
}

func TestAwaitHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	runner := &fakeRunner{release: release}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if res := m.Await(ctx, convId); res != nil {
		t.Error("Await returned a result on a cancelled context, want nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Await ignored cancellation, took %v", elapsed)
	}
}

func TestRecoverReturnsStoredResult(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	token := m.Trigger(context.Background(), convId, "question", nil)
	if res := m.Await(context.Background(), convId); res == nil {
		t.Fatal("precondition failed: no result stored")
	}

	res := m.Recover(context.Background(), convId)
	if res == nil {
		t.Fatal("Recover returned nil, want the stored result")
	}
	if res.Token != token {
		t.Errorf("recovered token = %s, want %s", res.Token, token)
	}
}

func TestRecoverUnknownConversation(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{}, nil, mode.HITL)
	if res := m.Recover(context.Background(), uuid.New()); res != nil {
		t.Error("Recover returned a result for an untracked conversation, want nil")
	}
}

func TestFlushClearsAllState(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, nil, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)
	if res := m.Await(context.Background(), convId); res == nil {
		t.Fatal("precondition failed: no result stored")
	}

	m.Flush()

	if res := m.Pending(context.Background(), convId); res != nil {
		t.Error("Pending returned a result after Flush, want nil")
	}
	if res := m.Recover(context.Background(), convId); res != nil {
		t.Error("Recover returned a result after Flush, want nil")
	}
}

func TestEventsPublishedPerTokenOutcome(t *testing.T) {
	publisher := &capturingPublisher{}
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, publisher, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "question", nil)
	if res := m.Await(context.Background(), convId); res == nil {
		t.Fatal("precondition failed: no result delivered")
	}

	types := publisher.types()
	if len(types) != 1 || types[0] != events.TypeSuggestionReady {
		t.Errorf("published events = %v, want one %s", types, events.TypeSuggestionReady)
	}
}

func TestSupersededEventForStaleCompletion(t *testing.T) {
	publisher := &capturingPublisher{}
	release := make(chan struct{})
	runner := &fakeRunner{release: release}
	m, _ := newTestManager(runner, publisher, mode.HITL)
	convId := uuid.New()

	m.Trigger(context.Background(), convId, "first question", nil)
	m.Invalidate(convId)
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(publisher.types()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	types := publisher.types()
	if len(types) != 1 || types[0] != events.TypeSuggestionSuperseded {
		t.Errorf("published events = %v, want one %s", types, events.TypeSuggestionSuperseded)
	}
}
