package rephrase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/pkg/llm"
	"citizen-helpdesk-be/pkg/rag"
)

// Reason codes recorded in the debug trace. Stable contract, do not rename.
const (
	ReasonSkippedByConfig  = "skipped_by_config"
	ReasonSkippedNoHistory = "skipped_no_history"
	ReasonRephrased        = "rephrased"
	ReasonUnchanged        = "unchanged"
	ReasonFallbackError    = "fallback_error"
)

// Failure policies for a collaborator error during rephrasing.
const (
	FailureModeFallback = "fallback" // use original question, result stays success
	FailureModeDegrade  = "degrade"  // use original question, flag result degraded
)

const rephraseTemperature = 0.1

type Config struct {
	Skip             bool
	MinHistoryLength int
	Model            string
	FailureMode      string // "fallback" | "degrade"
}

// Outcome is what the rephraser hands back to the orchestrator. Rewrite never
// returns an error: a collaborator failure falls back to the original
// question and is reported through Reason/Err for the trace only.
type Outcome struct {
	Query        string
	WasRephrased bool
	Reason       string
	Degraded     bool
	Err          error
}

// Rephraser conditionally rewrites a follow-up question into a standalone one
// so retrieval sees the real subject instead of a pronoun.
type Rephraser struct {
	llmProvider llm.LLMProvider
	cfg         Config
	logger      *log.Logger
}

func NewRephraser(llmProvider llm.LLMProvider, cfg Config, logger *log.Logger) *Rephraser {
	if cfg.FailureMode == "" {
		cfg.FailureMode = FailureModeFallback
	}
	return &Rephraser{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

func (r *Rephraser) Rewrite(ctx context.Context, question string, history []rag.Turn) Outcome {
	if r.cfg.Skip {
		return Outcome{Query: question, Reason: ReasonSkippedByConfig}
	}
	if len(history) < r.cfg.MinHistoryLength {
		return Outcome{Query: question, Reason: ReasonSkippedNoHistory}
	}

	prompt := r.buildPrompt(question, history)

	opts := []llm.Option{llm.WithTemperature(rephraseTemperature)}
	if r.cfg.Model != "" {
		opts = append(opts, llm.WithModel(r.cfg.Model))
	}

	rewritten, err := r.llmProvider.Generate(ctx, prompt, opts...)
	if err != nil {
		r.logger.Printf("[REPHRASE] Collaborator failed, keeping original question: %v", err)
		return Outcome{
			Query:    question,
			Reason:   ReasonFallbackError,
			Degraded: r.cfg.FailureMode == FailureModeDegrade,
			Err:      err,
		}
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" || rewritten == question {
		return Outcome{Query: question, Reason: ReasonUnchanged}
	}

	r.logger.Printf("[REPHRASE] %q -> %q", question, rewritten)
	return Outcome{Query: rewritten, WasRephrased: true, Reason: ReasonRephrased}
}

func (r *Rephraser) buildPrompt(question string, history []rag.Turn) string {
	var b strings.Builder

	b.WriteString(constant.RephrasePromptV1)
	b.WriteString("\n\n<conversation>\n")
	for _, turn := range history {
		b.WriteString(fmt.Sprintf("Citizen: %s\n", turn.Question))
		if turn.Answer != "" {
			b.WriteString(fmt.Sprintf("Agent: %s\n", turn.Answer))
		}
	}
	b.WriteString("</conversation>\n\n")
	b.WriteString(fmt.Sprintf("Latest question: %s\n", question))
	b.WriteString("Standalone question:")

	return b.String()
}
