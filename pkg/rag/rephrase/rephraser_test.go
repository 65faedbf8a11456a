package rephrase

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"citizen-helpdesk-be/pkg/llm"
	"citizen-helpdesk-be/pkg/rag"
)

type fakeLLM struct {
	response string
	err      error
	called   bool
	prompt   string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.called = true
	f.prompt = prompt
	return f.response, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRewrite(t *testing.T) {
	history := []rag.Turn{
		{Question: "How do I renew my passport?", Answer: "Bring your current passport to any office."},
	}

	tests := []struct {
		name          string
		cfg           Config
		question      string
		history       []rag.Turn
		llmResponse   string
		llmErr        error
		wantQuery     string
		wantReason    string
		wantRewritten bool
		wantDegraded  bool
		wantLLMCall   bool
	}{
		{
			name:       "skipped by config",
			cfg:        Config{Skip: true, MinHistoryLength: 1},
			question:   "How long does it take?",
			history:    history,
			wantQuery:  "How long does it take?",
			wantReason: ReasonSkippedByConfig,
		},
		{
			name:       "skipped when history too short",
			cfg:        Config{MinHistoryLength: 1},
			question:   "How long does it take?",
			history:    []rag.Turn{},
			wantQuery:  "How long does it take?",
			wantReason: ReasonSkippedNoHistory,
		},
		{
			name:          "rephrased follow-up",
			cfg:           Config{MinHistoryLength: 1},
			question:      "How long does it take?",
			history:       history,
			llmResponse:   "How long does a passport renewal take?",
			wantQuery:     "How long does a passport renewal take?",
			wantReason:    ReasonRephrased,
			wantRewritten: true,
			wantLLMCall:   true,
		},
		{
			name:        "unchanged when model echoes the question",
			cfg:         Config{MinHistoryLength: 1},
			question:    "How long does a passport renewal take?",
			history:     history,
			llmResponse: "How long does a passport renewal take?",
			wantQuery:   "How long does a passport renewal take?",
			wantReason:  ReasonUnchanged,
			wantLLMCall: true,
		},
		{
			name:        "unchanged when model returns whitespace",
			cfg:         Config{MinHistoryLength: 1},
			question:    "How long does it take?",
			history:     history,
			llmResponse: "   \n",
			wantQuery:   "How long does it take?",
			wantReason:  ReasonUnchanged,
			wantLLMCall: true,
		},
		{
			name:        "fallback on collaborator error",
			cfg:         Config{MinHistoryLength: 1, FailureMode: FailureModeFallback},
			question:    "How long does it take?",
			history:     history,
			llmErr:      errors.New("connection refused"),
			wantQuery:   "How long does it take?",
			wantReason:  ReasonFallbackError,
			wantLLMCall: true,
		},
		{
			name:         "degrade on collaborator error",
			cfg:          Config{MinHistoryLength: 1, FailureMode: FailureModeDegrade},
			question:     "How long does it take?",
			history:      history,
			llmErr:       errors.New("connection refused"),
			wantQuery:    "How long does it take?",
			wantReason:   ReasonFallbackError,
			wantDegraded: true,
			wantLLMCall:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{response: tt.llmResponse, err: tt.llmErr}
			r := NewRephraser(provider, tt.cfg, discardLogger())

			out := r.Rewrite(context.Background(), tt.question, tt.history)

			if out.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", out.Query, tt.wantQuery)
			}
			if out.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", out.Reason, tt.wantReason)
			}
			if out.WasRephrased != tt.wantRewritten {
				t.Errorf("WasRephrased = %v, want %v", out.WasRephrased, tt.wantRewritten)
			}
			if out.Degraded != tt.wantDegraded {
				t.Errorf("Degraded = %v, want %v", out.Degraded, tt.wantDegraded)
			}
			if provider.called != tt.wantLLMCall {
				t.Errorf("LLM called = %v, want %v", provider.called, tt.wantLLMCall)
			}
		})
	}
}

func TestBuildPromptIncludesHistoryTurns(t *testing.T) {
	provider := &fakeLLM{response: "standalone"}
	r := NewRephraser(provider, Config{MinHistoryLength: 1}, discardLogger())

	history := []rag.Turn{
		{Question: "Do I need an appointment?", Answer: "No, walk-ins are fine."},
		{Question: "What about express service?"},
	}
	r.Rewrite(context.Background(), "How much does it cost?", history)

	for _, want := range []string{
		"Citizen: Do I need an appointment?",
		"Agent: No, walk-ins are fine.",
		"Citizen: What about express service?",
		"Latest question: How much does it cost?",
	} {
		if !strings.Contains(provider.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(provider.prompt, "Agent: \n") {
		t.Error("prompt contains empty agent line for unanswered turn")
	}
}
