package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"citizen-helpdesk-be/internal/constant"
	"citizen-helpdesk-be/pkg/llm"
	"citizen-helpdesk-be/pkg/rag"
)

// Failure reasons recorded in the debug trace. Timeout and collaborator error
// look the same to the outside (the fixed fallback answer); only the trace
// distinguishes them.
const (
	FailReasonTimeout       = "timeout"
	FailReasonUpstreamError = "upstream_error"
)

const DefaultTimeout = 60 * time.Second

type Config struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Output carries the generated answer plus everything the trace needs.
// FailReason is empty on success; on failure Answer holds the fixed fallback
// apology, never an empty string.
type Output struct {
	Answer         string
	FailReason     string
	Err            error
	Model          string
	Temperature    float64
	ResponseLength int
}

// Generator invokes the chat-completion collaborator under a deadline.
// It never raises to its caller.
type Generator struct {
	llmProvider llm.LLMProvider
	cfg         Config
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, cfg Config, logger *log.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Generator{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

// Generate produces an answer grounded in the formatted context block. A
// non-empty history selects the history-aware template; otherwise the simple
// template with no history placeholder is used.
func (g *Generator) Generate(ctx context.Context, question, contextBlock string, history []rag.Turn) Output {
	prompt := g.buildPrompt(question, contextBlock, history)

	opts := []llm.Option{llm.WithTemperature(g.cfg.Temperature)}
	if g.cfg.Model != "" {
		opts = append(opts, llm.WithModel(g.cfg.Model))
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	response, err := g.llmProvider.Generate(callCtx, prompt, opts...)
	if err != nil {
		reason := FailReasonUpstreamError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = FailReasonTimeout
		}
		g.logger.Printf("[GENERATE] Failed (%s): %v", reason, err)
		return Output{
			Answer:      constant.GenerationFallbackAnswer,
			FailReason:  reason,
			Err:         err,
			Model:       g.cfg.Model,
			Temperature: g.cfg.Temperature,
		}
	}

	response = strings.TrimSpace(response)
	g.logger.Printf("[GENERATE] Answer generated (%d characters)", len(response))

	return Output{
		Answer:         response,
		Model:          g.cfg.Model,
		Temperature:    g.cfg.Temperature,
		ResponseLength: len(response),
	}
}

func (g *Generator) buildPrompt(question, contextBlock string, history []rag.Turn) string {
	var b strings.Builder

	b.WriteString(constant.AssistPersonaInstructionsV1)
	b.WriteString("\n\n<knowledge_base_context>\n")
	b.WriteString(contextBlock)
	b.WriteString("\n</knowledge_base_context>\n")

	if len(history) > 0 {
		b.WriteString("\n<conversation_history>\n")
		for _, turn := range history {
			b.WriteString(fmt.Sprintf("Citizen: %s\n", turn.Question))
			if turn.Answer != "" {
				b.WriteString(fmt.Sprintf("Agent: %s\n", turn.Answer))
			}
		}
		b.WriteString("</conversation_history>\n")
	}

	b.WriteString("\n<citizen_question>\n")
	b.WriteString(question)
	b.WriteString("\n</citizen_question>\n\n")
	b.WriteString("Answer:")

	return b.String()
}
