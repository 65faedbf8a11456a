package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"citizen-helpdesk-be/pkg/rag"
	"citizen-helpdesk-be/pkg/rag/answer"
	"citizen-helpdesk-be/pkg/rag/contextfmt"
	"citizen-helpdesk-be/pkg/rag/rephrase"
	"citizen-helpdesk-be/pkg/rag/retrieval"
	"citizen-helpdesk-be/pkg/rag/sources"
)

// Pipeline states. There is no FAILED terminal: every stage absorbs its own
// failure and the machine always reaches StateDone carrying a well-formed
// result. The only escaping error is pre-pipeline input validation.
const (
	StateStarted     = "STARTED"
	StateRephrasing  = "REPHRASING"
	StateRetrieving  = "RETRIEVING"
	StateFormatting  = "FORMATTING"
	StateGenerating  = "GENERATING"
	StateAttributing = "ATTRIBUTING"
	StateDone        = "DONE"
)

// Trace stage names. Stable contract for the operator debug viewer.
const (
	stageRephrase  = "rephrase"
	stageRetrieve  = "retrieve"
	stageFormat    = "format"
	stageGenerate  = "generate"
	stageAttribute = "attribute"
)

type Config struct {
	TopK int
}

func DefaultConfig() Config {
	return Config{TopK: 3}
}

// Orchestrator sequences the five pipeline stages into one request/response
// cycle. The stages are composed explicitly, no shared base type: each one
// is an independent component that absorbs its own failures.
type Orchestrator struct {
	rephraser *rephrase.Rephraser
	retriever *retrieval.Retriever
	generator *answer.Generator
	cfg       Config
	logger    *log.Logger
}

func NewOrchestrator(
	rephraser *rephrase.Rephraser,
	retriever *retrieval.Retriever,
	generator *answer.Generator,
	cfg Config,
	logger *log.Logger,
) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	return &Orchestrator{
		rephraser: rephraser,
		retriever: retriever,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one full pipeline cycle for the request. Synchronous from the
// caller's point of view; the suggestion lifecycle manager wraps it in a
// goroutine. The returned error is non-nil only for input validation, raised
// before the STARTED state.
func (o *Orchestrator) Run(ctx context.Context, req *rag.Request) (*rag.Result, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, &rag.ValidationError{Field: "question", Message: "question must not be empty"}
	}

	state := StateStarted
	result := &rag.Result{
		Token:          req.Token,
		ConversationId: req.ConversationId,
		Outcome:        rag.OutcomeSuccess,
		Trace:          []rag.TraceRecord{},
	}

	// Stage 1: rephrase. Retrieval consumes the rephrased query, so this
	// must run first; the stages are strictly sequential.
	state = StateRephrasing
	reph := o.rephraser.Rewrite(ctx, req.Question, req.History)
	rec := rag.TraceRecord{Stage: stageRephrase, Action: reph.Reason}
	if reph.Err != nil {
		rec.Error = reph.Err.Error()
	}
	result.Trace = append(result.Trace, rec)
	if reph.Degraded {
		result.Outcome = rag.OutcomeDegraded
	}

	// Stage 2: retrieve. A collaborator failure degrades to an empty
	// passage list; the pipeline proceeds either way.
	state = StateRetrieving
	chunks, retrErr := o.retriever.Retrieve(ctx, reph.Query, o.cfg.TopK)
	rec = rag.TraceRecord{Stage: stageRetrieve, Action: retrieveAction(len(chunks))}
	if retrErr != nil {
		rec.Action = "failed_empty_fallback"
		rec.Error = retrErr.Error()
	}
	result.Trace = append(result.Trace, rec)

	// Stage 3: format. Pure, cannot fail.
	state = StateFormatting
	contextBlock := contextfmt.Format(chunks)
	result.ContextsUsed = len(chunks)
	result.Trace = append(result.Trace, rag.TraceRecord{
		Stage:          stageFormat,
		Action:         formatAction(len(chunks)),
		ResponseLength: len(contextBlock),
	})

	// Stage 4: generate. Timeout and upstream error both collapse into the
	// fixed fallback answer; the trace keeps them apart.
	state = StateGenerating
	gen := o.generator.Generate(ctx, req.Question, contextBlock, req.History)
	rec = rag.TraceRecord{
		Stage:          stageGenerate,
		Action:         generateAction(gen.FailReason, len(req.History)),
		Model:          gen.Model,
		Temperature:    gen.Temperature,
		ResponseLength: gen.ResponseLength,
	}
	if gen.Err != nil {
		rec.Error = gen.Err.Error()
		result.Outcome = rag.OutcomeDegraded
	}
	result.Trace = append(result.Trace, rec)
	result.Answer = gen.Answer

	// Stage 5: attribute.
	state = StateAttributing
	result.Sources, result.SourceUrls = sources.Attribute(chunks)
	result.Trace = append(result.Trace, rag.TraceRecord{
		Stage:  stageAttribute,
		Action: attributeAction(len(result.Sources)),
	})

	state = StateDone
	result.CreatedAt = time.Now()
	o.logger.Printf("[PIPELINE] %s: conversation=%s token=%s outcome=%s contexts=%d",
		state, req.ConversationId, req.Token, result.Outcome, result.ContextsUsed)

	return result, nil
}

func retrieveAction(n int) string {
	if n == 0 {
		return "no_results"
	}
	return "retrieved"
}

func formatAction(n int) string {
	if n == 0 {
		return "no_documents_marker"
	}
	return "formatted"
}

func generateAction(failReason string, historyLen int) string {
	if failReason != "" {
		return "fallback_" + failReason
	}
	if historyLen > 0 {
		return "generated_with_history"
	}
	return "generated_simple"
}

func attributeAction(n int) string {
	if n == 0 {
		return "no_sources"
	}
	return "attributed"
}
