// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package wizard implements the step sequencer driving the key generation flows.
//
// A Sequencer owns the session state of a single flow. Fields are only set while their
// step is active, the step's validation gates advancing and a step's tool invocation must
// succeed before the next step is shown. Retreating clears the fields the step enumerates.
package wizard

import (
	"context"
	"strings"
	"sync"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/z"
	"github.com/obolnetwork/wagyu/depositcli"
)

var (
	// ErrBusy is returned when setting a field while an invocation is pending.
	ErrBusy = errors.NewSentinel("invocation pending")
	// ErrNotOwned is returned when setting a field not owned by the active step.
	ErrNotOwned = errors.NewSentinel("field not owned by active step")
)

// Outcome is the result of a transition.
type Outcome int

const (
	// OutcomeMoved indicates the active step changed.
	OutcomeMoved Outcome = iota
	// OutcomeInvalid indicates validation failed, field errors are set.
	OutcomeInvalid
	// OutcomeBusy indicates an invocation is pending, nothing changed.
	OutcomeBusy
	// OutcomeFailed indicates the step's invocation failed, the failure is recorded in the step's
	// error field or as the blocking error.
	OutcomeFailed
	// OutcomeClose indicates the final step was advanced, the host should close the wizard.
	OutcomeClose
	// OutcomeExit indicates the first step was retreated from, the host should leave the wizard.
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBusy:
		return "busy"
	case OutcomeFailed:
		return "failed"
	case OutcomeClose:
		return "close"
	case OutcomeExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Hooks are optional host callbacks.
type Hooks struct {
	// Waiting is called before a step's invocation starts.
	Waiting func(Step)
}

// State is a snapshot of the session for rendering.
type State struct {
	Index int
	Step  Step
	Last  bool
	// Fields are the active step's fields, including expanded fields.
	Fields []Field
	// Values are the collected fields.
	Values Values
	// Errors are the inline errors by field.
	Errors map[Field]string
	// Blocking is set when the tool could not be resolved.
	Blocking string
}

// session is the mutable state of a flow.
type session struct {
	index    int
	fields   Values
	errors   map[Field]string
	blocking string
}

// New returns a sequencer for the flow starting at its first step.
func New(flow Flow, hooks Hooks) *Sequencer {
	return &Sequencer{
		flow:    flow,
		hooks:   hooks,
		session: newSession(flow),
	}
}

// Sequencer mediates the transitions of a single flow.
type Sequencer struct {
	flow  Flow
	hooks Hooks

	mu      sync.Mutex
	session session
	pending bool
}

func newSession(flow Flow) session {
	return session{
		fields: flow.Defaults.clone(),
		errors: make(map[Field]string),
	}
}

// Flow returns the sequencer's flow.
func (s *Sequencer) Flow() Flow {
	return s.flow
}

// State returns a snapshot of the session.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(map[Field]string, len(s.session.errors))
	for k, v := range s.session.errors {
		errs[k] = v
	}

	step := s.flow.Steps[s.session.index]

	return State{
		Index:    s.session.index,
		Step:     step,
		Last:     s.session.index == len(s.flow.Steps)-1,
		Fields:   step.FieldsFor(s.session.fields),
		Values:   s.session.fields.clone(),
		Errors:   errs,
		Blocking: s.session.blocking,
	}
}

// Pending returns true while an invocation is in progress.
func (s *Sequencer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Set sets a field owned by the active step and clears its inline error.
func (s *Sequencer) Set(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return errors.Wrap(ErrBusy, "set field", z.Str("field", string(field)))
	}

	step := s.flow.Steps[s.session.index]
	if !step.owns(field, s.session.fields) {
		return errors.Wrap(ErrNotOwned, "set field", z.Str("field", string(field)), z.Str("step", step.Key.String()))
	}

	s.session.fields[field] = value
	delete(s.session.errors, field)

	return nil
}

// Advance validates the active step, runs its invocation if any and moves to the next step.
// A concurrent Advance while an invocation is pending returns OutcomeBusy without side effects.
func (s *Sequencer) Advance(ctx context.Context) Outcome {
	s.mu.Lock()

	if s.pending {
		s.mu.Unlock()
		return OutcomeBusy
	}

	index := s.session.index
	step := s.flow.Steps[index]

	if index == len(s.flow.Steps)-1 {
		s.mu.Unlock()
		return OutcomeClose
	}

	if step.Validate != nil {
		if errs := step.Validate(s.session.fields.clone()); len(errs) > 0 {
			for _, e := range errs {
				s.session.errors[e.Field] = e.Message
			}
			s.mu.Unlock()

			return OutcomeInvalid
		}
	}

	s.clearErrors(step)

	if step.Action == nil {
		s.session.index++
		s.mu.Unlock()

		return OutcomeMoved
	}

	s.pending = true
	values := s.session.fields.clone()
	s.mu.Unlock()

	if s.hooks.Waiting != nil {
		s.hooks.Waiting(step)
	}

	ctx = log.WithCtx(ctx, z.Str("flow", s.flow.Name), z.Str("step", step.Key.String()))
	updates, err := step.Action(ctx, values)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false

	if err != nil {
		s.recordFailure(ctx, step, err)
		return OutcomeFailed
	}

	for k, v := range updates {
		s.session.fields[k] = v
	}
	s.session.index++

	return OutcomeMoved
}

// Retreat clears the active step's enumerated fields and moves to the previous step.
// Retreating from the first step resets the session and returns OutcomeExit.
func (s *Sequencer) Retreat() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return OutcomeBusy
	}

	if s.session.index == 0 {
		s.session = newSession(s.flow)
		return OutcomeExit
	}

	step := s.flow.Steps[s.session.index]
	s.clearErrors(step)

	for _, field := range step.clears(s.session.fields) {
		if def, ok := s.flow.Defaults[field]; ok {
			s.session.fields[field] = def
		} else {
			delete(s.session.fields, field)
		}
		delete(s.session.errors, field)
	}

	s.session.index--

	return OutcomeMoved
}

// clearErrors clears the step's field errors and the blocking error.
func (s *Sequencer) clearErrors(step Step) {
	for _, field := range step.FieldsFor(s.session.fields) {
		delete(s.session.errors, field)
	}

	if step.ErrorField != "" {
		delete(s.session.errors, step.ErrorField)
	}

	s.session.blocking = ""
}

// recordFailure converts an invocation error into session state.
func (s *Sequencer) recordFailure(ctx context.Context, step Step, err error) {
	var resErr *depositcli.ResolutionError
	if errors.As(err, &resErr) {
		log.Warn(ctx, "Deposit cli unavailable", err)
		s.session.blocking = resErr.Error()

		return
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			s.session.errors[e.Field] = e.Message
		}

		return
	}

	msg := err.Error()

	var failure *depositcli.Failure
	if errors.As(err, &failure) {
		log.Debug(ctx, "Deposit cli invocation failed", z.Int("exit_code", failure.ExitCode))

		stderr := strings.TrimSpace(failure.Stderr)
		msg = MsgGenericFailure
		if stderr != "" {
			msg = stderr
		}

		if step.FailureMessage != nil {
			if override := step.FailureMessage(stderr); override != "" {
				msg = override
			}
		}
	} else {
		log.Debug(ctx, "Deposit cli invocation error", z.Err(err))
	}

	field := step.ErrorField
	if fields := step.FieldsFor(s.session.fields); field == "" && len(fields) > 0 {
		field = fields[0]
	}

	if field == "" {
		s.session.blocking = msg
		return
	}

	s.session.errors[field] = msg
}
