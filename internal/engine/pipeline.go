// Package engine drives the memory pipeline: each submitted utterance is
// classified as a question or a statement, then either answered from the
// stored memories (recall) or turned into a new stored fact (extraction).
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/scrypster/mnemo/internal/config"
	"github.com/scrypster/mnemo/internal/llm"
	"github.com/scrypster/mnemo/internal/storage"
	"github.com/scrypster/mnemo/pkg/types"
)

// State is the pipeline's current position in the per-submission state
// machine: Idle -> Classifying -> {ExtractingFact | Recalling} -> Idle.
// Any failure returns the pipeline to Idle.
type State string

const (
	StateIdle        State = "idle"
	StateClassifying State = "classifying"
	StateExtracting  State = "extracting_fact"
	StateRecalling   State = "recalling"
)

// ErrEmptyInput is returned for empty or whitespace-only utterances; no model
// call is made and the state does not change.
var ErrEmptyInput = errors.New("empty input")

// ErrBusy is returned when a submission arrives while another is in flight.
// At most one pipeline run executes at a time.
var ErrBusy = errors.New("a request is already being processed")

// ResultKind distinguishes the pipeline's three successful outcomes.
type ResultKind int

const (
	// ResultSaved: a statement was extracted and stored as a new memory.
	ResultSaved ResultKind = iota
	// ResultAnswer: a question was answered from the stored memories.
	ResultAnswer
	// ResultNothingStored: a question arrived before anything was stored.
	ResultNothingStored
)

// nothingStoredAnswer is returned for a question asked against an empty
// store, instead of mis-extracting the question text as a fact.
const nothingStoredAnswer = "I don't have any memories stored yet. Tell me something to remember first."

// Result is the outcome of one successful pipeline run.
type Result struct {
	Kind   ResultKind
	Answer string       // set for ResultAnswer and ResultNothingStored
	Memory types.Memory // set for ResultSaved
	Total  int          // store size after the run, set for ResultSaved
}

// Pipeline orchestrates the classify -> extract-or-recall -> persist flow.
// It never retries: every external-call failure is terminal for that
// submission and the user must resubmit.
type Pipeline struct {
	completer      llm.Completer
	store          *storage.Store
	extractionTemp float64
	recallTemp     float64

	mu    sync.Mutex
	state State
	busy  bool
}

// New creates a Pipeline over the given completer and store. Temperatures
// come from config: classification and extraction share the deterministic
// extraction temperature, recall uses its own.
func New(completer llm.Completer, store *storage.Store, cfg config.LLMConfig) *Pipeline {
	return &Pipeline{
		completer:      completer,
		store:          store,
		extractionTemp: cfg.ExtractionTemperature,
		recallTemp:     cfg.RecallTemperature,
		state:          StateIdle,
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Process runs the pipeline for one utterance. On failure the store is
// untouched and exactly one error is returned for the caller to surface.
func (p *Pipeline) Process(ctx context.Context, utterance string) (*Result, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.busy = true
	p.state = StateClassifying
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.busy = false
		p.state = StateIdle
		p.mu.Unlock()
	}()

	label, err := p.completer.Complete(ctx, llm.ClassificationPrompt(), utterance, p.extractionTemp)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	label = strings.ToLower(strings.TrimSpace(label))

	if label == "question" {
		if p.store.Len() == 0 {
			return &Result{Kind: ResultNothingStored, Answer: nothingStoredAnswer}, nil
		}
		return p.recall(ctx, utterance)
	}
	return p.extract(ctx, utterance)
}

// recall answers the question strictly from the stored memories.
func (p *Pipeline) recall(ctx context.Context, question string) (*Result, error) {
	p.setState(StateRecalling)

	prompt := llm.RecallPrompt(p.store.List(), question)
	answer, err := p.completer.Complete(ctx, prompt, question, p.recallTemp)
	if err != nil {
		return nil, fmt.Errorf("recall failed: %w", err)
	}

	return &Result{Kind: ResultAnswer, Answer: strings.TrimSpace(answer)}, nil
}

// extract turns the statement into a structured fact and appends it.
func (p *Pipeline) extract(ctx context.Context, statement string) (*Result, error) {
	p.setState(StateExtracting)

	raw, err := p.completer.Complete(ctx, llm.ExtractionPrompt(), statement, p.extractionTemp)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	fact, err := llm.ParseFactResponse(raw)
	if err != nil {
		return nil, err
	}

	m, err := p.store.AddFact(fact.Type, fact.What, fact.Value, fact.Expires)
	if err != nil {
		// The model produced a syntactically valid object with empty fields;
		// treat it the same as an explicit decline.
		return nil, fmt.Errorf("%w: extracted fact has empty fields", llm.ErrUnclear)
	}

	return &Result{Kind: ResultSaved, Memory: m, Total: p.store.Len()}, nil
}
