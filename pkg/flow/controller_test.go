package flow

import (
	"strings"
	"testing"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/metrics"
	"quillcheck/pkg/selection"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(n int) string {
	return strings.Repeat("b", n)
}

func newController(opts ...Option) *Controller {
	return New(selection.New(), chains.Default(), opts...)
}

func TestScenarioInvalidThenValid(t *testing.T) {
	c := newController()
	c.State().PickChain("ETH")
	c.State().EditAddress(addr(41))

	mode := c.Submit()
	assert.True(t, mode.IsSelecting())
	assert.True(t, c.State().InvalidAddress())
	assert.False(t, c.State().NoChainSelected())

	c.State().EditAddress(addr(42))
	assert.False(t, c.State().InvalidAddress())

	mode = c.Submit()
	assert.Equal(t, Reporting(Fungible, "ETH", addr(42), 1), mode)
	assert.False(t, c.State().InvalidAddress())
	assert.False(t, c.State().NoChainSelected())
}

func TestScenarioNoChain(t *testing.T) {
	c := newController()
	c.State().EditAddress(addr(42))

	mode := c.Submit()
	assert.True(t, mode.IsSelecting())
	assert.True(t, c.State().NoChainSelected())
	assert.False(t, c.State().InvalidAddress())
}

func TestScenarioNative(t *testing.T) {
	c := newController()
	c.State().PickChain("SOL")
	c.State().EditAddress(addr(44))

	mode := c.Submit()
	assert.Equal(t, Reporting(Native, "SOL", addr(44), 501), mode)
	assert.Equal(t, "reporting_native", mode.Name())
}

func TestFailedSubmitLeavesOtherFlag(t *testing.T) {
	c := newController()
	c.State().EditAddress(addr(10))
	c.Submit()
	require.True(t, c.State().NoChainSelected())

	// Editing the address does not clear the chain prompt.
	c.State().EditAddress(addr(12))
	assert.True(t, c.State().NoChainSelected())

	c.State().PickChain("BSC")
	c.Submit()
	assert.True(t, c.State().InvalidAddress())
	assert.False(t, c.State().NoChainSelected())

	// A chain prompt left over is not force-cleared by an address failure.
	c.State().MarkNoChainSelected()
	c.Submit()
	assert.True(t, c.State().InvalidAddress())
	assert.True(t, c.State().NoChainSelected())
}

func TestSubmitIsDeterministic(t *testing.T) {
	symbols := append(chains.Default().Symbols(), "")
	for _, sym := range symbols {
		for n := 0; n <= 50; n++ {
			c := newController()
			if sym != "" {
				c.State().PickChain(sym)
			}
			c.State().EditAddress(addr(n))
			mode := c.Submit()

			outcomes := 0
			if mode.IsSelecting() && (c.State().InvalidAddress() || c.State().NoChainSelected()) {
				outcomes++
			}
			if mode.IsReporting() && mode.Kind == Fungible {
				outcomes++
			}
			if mode.IsReporting() && mode.Kind == Native {
				outcomes++
			}
			assert.Equal(t, 1, outcomes, "symbol %q len %d", sym, n)
		}
	}
}

func TestBackClearsFlagsKeepsInput(t *testing.T) {
	for _, sym := range []string{"POL", "SOL"} {
		c := newController()
		c.State().PickChain(sym)
		n := 42
		if sym == "SOL" {
			n = 45
		}
		c.State().EditAddress(addr(n))
		require.True(t, c.Submit().IsReporting())

		// Flags raised while reporting are still cleared on the way back.
		c.State().MarkInvalidAddress()
		c.State().MarkNoChainSelected()

		mode := c.Back()
		assert.True(t, mode.IsSelecting())
		assert.False(t, c.State().InvalidAddress())
		assert.False(t, c.State().NoChainSelected())
		assert.Equal(t, sym, c.State().ChainSymbol())
		assert.Equal(t, addr(n), c.State().Address())
	}
}

func TestBackWithReset(t *testing.T) {
	c := newController(WithResetOnBack(true))
	c.State().PickChain("Base")
	c.State().EditAddress(addr(42))
	c.Submit()

	c.Back()
	assert.Equal(t, selection.Snapshot{}, c.State().Snapshot())
}

func TestBackFromSelectingIsNoop(t *testing.T) {
	var seen []Transition
	c := newController(WithObserver(func(tr Transition) { seen = append(seen, tr) }))
	c.State().MarkNoChainSelected()

	assert.True(t, c.Back().IsSelecting())
	assert.True(t, c.State().NoChainSelected())
	assert.Empty(t, seen)
}

func TestSubmitWhileReportingIsNoop(t *testing.T) {
	c := newController()
	c.State().PickChain("ETH")
	c.State().EditAddress(addr(42))
	first := c.Submit()

	c.State().EditAddress(addr(3))
	assert.Equal(t, first, c.Submit())
}

func TestObserverSeesHandOffOnce(t *testing.T) {
	var seen []Transition
	c := newController(WithObserver(func(tr Transition) { seen = append(seen, tr) }))
	c.State().PickChain("ETH")
	c.State().EditAddress(addr(5))
	c.Submit()
	assert.Empty(t, seen)

	c.State().EditAddress(addr(42))
	c.Submit()
	c.Back()

	require.Len(t, seen, 2)
	assert.True(t, seen[0].From.IsSelecting())
	assert.Equal(t, "ETH", seen[0].To.Symbol)
	assert.True(t, seen[1].To.IsSelecting())
}

func TestUnregisteredSymbolFailSafe(t *testing.T) {
	m := metrics.New()
	c := newController(WithMetrics(m))
	c.State().PickChain("DOGE")
	c.State().EditAddress(addr(42))
	c.State().MarkInvalidAddress()

	mode := c.Submit()
	assert.True(t, mode.IsSelecting())
	assert.False(t, c.State().InvalidAddress())
	assert.False(t, c.State().NoChainSelected())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submits.WithLabelValues(metrics.OutcomeInternalFault)))
}

func TestUnregisteredSymbolFailLoud(t *testing.T) {
	c := newController(WithStrictFaults(true))
	c.State().PickChain("DOGE")
	assert.Panics(t, func() { c.Submit() })
}

func TestStrictValidatorRejectsBadHex(t *testing.T) {
	c := newController(WithValidator(chains.Validator{Strict: true}))
	c.State().PickChain("ETH")
	c.State().EditAddress(addr(42))
	assert.True(t, c.Submit().IsSelecting())
	assert.True(t, c.State().InvalidAddress())

	c.State().EditAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	assert.True(t, c.Submit().IsReporting())
}
