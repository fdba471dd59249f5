package filter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
)

// PageSize is the size of the visible window and of each More step.
const PageSize = 12

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrComplete      = errors.New("questionnaire complete")
)

type Speaker int

const (
	Bot Speaker = iota
	User
)

func (s Speaker) String() string {
	if s == User {
		return "you"
	}
	return "bot"
}

// Line is one transcript entry.
type Line struct {
	Speaker Speaker
	Text    string
}

type frame struct {
	step       int
	key        string
	transcript []Line
}

// Engine is the questionnaire state machine and the filtered view of the
// catalog. onChange receives the filtered count after every recompute.
type Engine struct {
	onChange func(count int)

	mu         sync.Mutex
	videos     []catalog.Video
	answers    map[string]string
	step       int
	history    []frame
	transcript []Line
	filtered   []catalog.Video
	visible    int
}

func New(onChange func(count int)) *Engine {
	e := &Engine{
		onChange: onChange,
		answers:  make(map[string]string),
		visible:  PageSize,
	}
	e.transcript = opening()
	return e
}

func opening() []Line {
	return []Line{
		{Speaker: Bot, Text: Greeting},
		{Speaker: Bot, Text: Steps[0].Prompt},
	}
}

// SetCatalog replaces the catalog and recomputes the view.
func (e *Engine) SetCatalog(videos []catalog.Video) {
	e.mu.Lock()
	e.videos = append([]catalog.Video(nil), videos...)
	n := e.applyLocked()
	e.mu.Unlock()
	e.notify(n)
}

// Current returns the step awaiting an answer, or false once all are answered.
func (e *Engine) Current() (Step, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.step >= len(Steps) {
		return Step{}, false
	}
	return Steps[e.step], true
}

func (e *Engine) StepIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

func (e *Engine) Done() bool {
	return e.StepIndex() >= len(Steps)
}

// Answers returns a copy of the recorded labels keyed by step key.
func (e *Engine) Answers() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// Answer records label for the current step and advances.
func (e *Engine) Answer(label string) error {
	e.mu.Lock()
	if e.step >= len(Steps) {
		e.mu.Unlock()
		return ErrComplete
	}
	step := Steps[e.step]
	if _, ok := step.Option(label); !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q for %s", ErrUnknownOption, label, step.Key)
	}

	e.history = append(e.history, frame{
		step:       e.step,
		key:        step.Key,
		transcript: append([]Line(nil), e.transcript...),
	})
	e.answers[step.Key] = label
	e.step++
	e.transcript = append(e.transcript, Line{Speaker: User, Text: label})
	if e.step >= len(Steps) {
		e.transcript = append(e.transcript, Line{Speaker: Bot, Text: Finished})
	} else {
		e.transcript = append(e.transcript, Line{Speaker: Bot, Text: Steps[e.step].Prompt})
	}

	n := e.applyLocked()
	e.mu.Unlock()
	e.notify(n)
	return nil
}

// Back undoes the last answer. It reports false when there is nothing to undo.
func (e *Engine) Back() bool {
	e.mu.Lock()
	if len(e.history) == 0 {
		e.mu.Unlock()
		return false
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.step = last.step
	delete(e.answers, last.key)
	e.transcript = last.transcript

	n := e.applyLocked()
	e.mu.Unlock()
	e.notify(n)
	return true
}

func (e *Engine) CanGoBack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history) > 0
}

// Reset starts the questionnaire over. The view is only recomputed when a
// catalog is loaded.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.history = nil
	e.step = 0
	e.answers = make(map[string]string)
	e.transcript = opening()
	if len(e.videos) == 0 {
		e.mu.Unlock()
		return
	}
	n := e.applyLocked()
	e.mu.Unlock()
	e.notify(n)
}

// More grows the visible window by one page.
func (e *Engine) More() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible += PageSize
}

// Filtered returns every matching video.
func (e *Engine) Filtered() []catalog.Video {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.Video(nil), e.filtered...)
}

// Visible returns the matching videos inside the visible window.
func (e *Engine) Visible() []catalog.Video {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := min(e.visible, len(e.filtered))
	return append([]catalog.Video(nil), e.filtered[:n]...)
}

func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered) > e.visible
}

func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered)
}

func (e *Engine) CatalogSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.videos)
}

func (e *Engine) Transcript() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Line(nil), e.transcript...)
}

func (e *Engine) applyLocked() int {
	e.filtered = Apply(e.videos, e.answers)
	e.visible = PageSize
	return len(e.filtered)
}

func (e *Engine) notify(n int) {
	if e.onChange != nil {
		e.onChange(n)
	}
}
