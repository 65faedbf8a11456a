package answer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/pkg/llm"
	"citizen-helpdesk-be/pkg/rag"
)

type fakeLLM struct {
	response string
	err      error
	block    bool
	prompt   string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestGenerateSuccess(t *testing.T) {
	provider := &fakeLLM{response: "  Renewals take ten working days.  \n"}
	g := NewGenerator(provider, Config{Model: "llama3", Temperature: 0.7}, discardLogger())

	out := g.Generate(context.Background(), "How long does renewal take?", "ctx block", nil)

	if out.Answer != "Renewals take ten working days." {
		t.Errorf("Answer = %q, want trimmed response", out.Answer)
	}
	if out.FailReason != "" {
		t.Errorf("FailReason = %q, want empty", out.FailReason)
	}
	if out.Err != nil {
		t.Errorf("Err = %v, want nil", out.Err)
	}
	if out.ResponseLength != len("Renewals take ten working days.") {
		t.Errorf("ResponseLength = %d, want %d", out.ResponseLength, len("Renewals take ten working days."))
	}
	if out.Model != "llama3" || out.Temperature != 0.7 {
		t.Errorf("trace metadata = (%q, %v), want (llama3, 0.7)", out.Model, out.Temperature)
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	provider := &fakeLLM{err: errors.New("upstream returned 503")}
	g := NewGenerator(provider, Config{}, discardLogger())

	out := g.Generate(context.Background(), "question", "ctx block", nil)

	if out.FailReason != FailReasonUpstreamError {
		t.Errorf("FailReason = %q, want %q", out.FailReason, FailReasonUpstreamError)
	}
	if out.Answer != constant.GenerationFallbackAnswer {
		t.Errorf("Answer = %q, want the fixed fallback", out.Answer)
	}
	if out.Err == nil {
		t.Error("Err = nil, want the collaborator error")
	}
}

func TestGenerateTimeout(t *testing.T) {
	provider := &fakeLLM{block: true}
	g := NewGenerator(provider, Config{Timeout: 10 * time.Millisecond}, discardLogger())

	start := time.Now()
	out := g.Generate(context.Background(), "question", "ctx block", nil)

	if out.FailReason != FailReasonTimeout {
		t.Errorf("FailReason = %q, want %q", out.FailReason, FailReasonTimeout)
	}
	if out.Answer != constant.GenerationFallbackAnswer {
		t.Errorf("Answer = %q, want the fixed fallback", out.Answer)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("deadline not enforced, Generate took %v", elapsed)
	}
}

func TestBuildPromptTemplateSelection(t *testing.T) {
	history := []rag.Turn{
		{Question: "Do I need an appointment?", Answer: "No, walk-ins are fine."},
	}

	tests := []struct {
		name    string
		history []rag.Turn
		want    []string
		avoid   []string
	}{
		{
			name:    "history-aware template",
			history: history,
			want: []string{
				"<conversation_history>",
				"Citizen: Do I need an appointment?",
				"Agent: No, walk-ins are fine.",
			},
		},
		{
			name:    "simple template without history placeholder",
			history: nil,
			avoid:   []string{"<conversation_history>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{response: "answer"}
			g := NewGenerator(provider, Config{}, discardLogger())
			g.Generate(context.Background(), "How much does it cost?", "the context", tt.history)

			for _, want := range append(tt.want,
				"<knowledge_base_context>\nthe context",
				"<citizen_question>\nHow much does it cost?",
			) {
				if !strings.Contains(provider.prompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
			for _, avoid := range tt.avoid {
				if strings.Contains(provider.prompt, avoid) {
					t.Errorf("prompt unexpectedly contains %q", avoid)
				}
			}
		})
	}
}

func TestNewGeneratorDefaultsTimeout(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, Config{}, discardLogger())
	if g.cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", g.cfg.Timeout, DefaultTimeout)
	}
}
