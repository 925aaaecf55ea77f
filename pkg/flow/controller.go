package flow

import (
	"errors"
	"fmt"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/metrics"
	"quillcheck/pkg/selection"

	"github.com/rs/zerolog"
)

// Transition is reported to observers after every mode change.
type Transition struct {
	From ViewMode
	To   ViewMode
}

// Option configures a Controller.
type Option func(*Controller)

func WithValidator(v chains.Validator) Option {
	return func(c *Controller) { c.validator = v }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithStrictFaults makes internal faults (an unregistered symbol) panic
// instead of reverting to Selecting. Meant for development builds.
func WithStrictFaults(strict bool) Option {
	return func(c *Controller) { c.strictFaults = strict }
}

// WithResetOnBack empties the selection when leaving a report view.
func WithResetOnBack(reset bool) Option {
	return func(c *Controller) { c.resetOnBack = reset }
}

// WithObserver registers fn to be called after each transition.
func WithObserver(fn func(Transition)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller is the Selecting/Reporting state machine. It is not safe for
// concurrent use; callers serialise events (the TUI event loop does).
type Controller struct {
	state    *selection.State
	registry *chains.Registry
	mode     ViewMode

	validator    chains.Validator
	log          zerolog.Logger
	metrics      *metrics.Metrics
	strictFaults bool
	resetOnBack  bool
	observers    []func(Transition)
}

// New returns a controller in Selecting mode.
func New(state *selection.State, reg *chains.Registry, opts ...Option) *Controller {
	c := &Controller{
		state:    state,
		registry: reg,
		mode:     Selecting,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode is the current view mode.
func (c *Controller) Mode() ViewMode { return c.mode }

// State is the selection the controller submits.
func (c *Controller) State() *selection.State { return c.state }

// Submit validates the selection. On success it enters Reporting and clears
// both flags; on a user error it stays in Selecting and raises exactly one
// flag. Submit while reporting is a no-op.
func (c *Controller) Submit() ViewMode {
	if c.mode.IsReporting() {
		return c.mode
	}

	choice, err := c.state.Validate(c.registry, c.validator)
	switch {
	case err == nil:
		c.state.ClearFlags()
		kind := Fungible
		if choice.Native {
			kind = Native
		}
		c.metrics.ObserveSubmit(metrics.OutcomeReport)
		c.log.Info().
			Str("symbol", choice.Symbol).
			Int64("chain_id", choice.ChainID).
			Str("kind", kind.String()).
			Msg("selection accepted")
		c.transition(Reporting(kind, choice.Symbol, choice.Address, choice.ChainID))

	case errors.Is(err, selection.ErrAddressInvalid):
		c.state.MarkInvalidAddress()
		c.metrics.ObserveSubmit(metrics.OutcomeInvalidAddress)
		c.log.Debug().Err(err).Msg("submit rejected")

	case errors.Is(err, selection.ErrNoChainSelected):
		c.state.MarkNoChainSelected()
		c.metrics.ObserveSubmit(metrics.OutcomeNoChain)
		c.log.Debug().Err(err).Msg("submit rejected")

	default:
		c.metrics.ObserveSubmit(metrics.OutcomeInternalFault)
		if c.strictFaults {
			panic(fmt.Errorf("flow: internal fault on submit: %w", err))
		}
		c.log.Error().Err(err).Str("symbol", c.state.ChainSymbol()).Msg("internal fault on submit, reverting to selection")
		c.state.ClearFlags()
		c.transition(Selecting)
	}
	return c.mode
}

// Back leaves a report view. Both flags are cleared; the chain and address
// are kept unless the controller was built WithResetOnBack.
func (c *Controller) Back() ViewMode {
	if c.mode.IsSelecting() {
		return c.mode
	}
	c.state.ClearFlags()
	if c.resetOnBack {
		c.state.Reset()
	}
	c.metrics.ObserveBack()
	c.log.Debug().Str("from", c.mode.Name()).Msg("back to selection")
	c.transition(Selecting)
	return c.mode
}

func (c *Controller) transition(to ViewMode) {
	from := c.mode
	c.mode = to
	if from == to {
		return
	}
	for _, fn := range c.observers {
		fn(Transition{From: from, To: to})
	}
}
