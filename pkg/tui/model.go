package tui

import (
	"time"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/config"
	"quillcheck/pkg/device"
	"quillcheck/pkg/flow"
	"quillcheck/pkg/report"
	"quillcheck/pkg/selection"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Version is set by Start()
var Version = "dev"

const (
	errInvalidAddress = "Enter a valid token address"
	errNoChain        = "Select the chain"
)

// --- Messages ---

type clearStatusMsg struct{}
type compactMsg bool

// Deps are the collaborators the model drives.
type Deps struct {
	Registry   *chains.Registry
	Dispatcher *report.Dispatcher
	Device     *device.Adapter
	Config     config.Config
	Logger     zerolog.Logger
	Controller []flow.Option
}

// --- Model ---

type model struct {
	registry   *chains.Registry
	symbols    []string
	state      *selection.State
	ctrl       *flow.Controller
	dispatcher *report.Dispatcher
	events     report.Subscriber
	device     *device.Adapter
	deviceSub  device.Subscriber
	config     config.Config
	log        zerolog.Logger

	// focus is a chain index, or len(symbols) for the address field.
	focus   int
	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	compact       bool
	width         int
	height        int
	loading       bool
	waitingSeq    uint64
	report        *report.Report
	fetchErr      error
	statusMessage string
}

func initialModel(deps Deps) model {
	reg := deps.Registry
	if reg == nil {
		reg = chains.Default()
	}
	dev := deps.Device
	if dev == nil {
		dev = device.NewAdapter(deps.Config.CompactThresholdPx, deps.Config.CellWidthPx)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Token address"
	ti.Width = 48
	ti.CharLimit = 64

	state := selection.New()
	opts := append([]flow.Option{flow.WithLogger(deps.Logger)}, deps.Controller...)
	opts = append(opts, flow.WithObserver(func(t flow.Transition) {
		deps.Logger.Debug().Str("from", t.From.Name()).Str("to", t.To.Name()).Msg("view transition")
	}))

	m := model{
		registry:   reg,
		symbols:    reg.Symbols(),
		state:      state,
		ctrl:       flow.New(state, reg, opts...),
		dispatcher: deps.Dispatcher,
		device:     dev,
		config:     deps.Config,
		log:        deps.Logger,
		input:      ti,
		spinner:    s,
		help:       help.New(),
		compact:    dev.Compact(),
	}
	if m.dispatcher != nil {
		m.events = m.dispatcher.Subscribe()
	}
	m.deviceSub = dev.Subscribe()
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.events != nil {
		cmds = append(cmds, listenForReports(m.events))
	}
	cmds = append(cmds, listenForDevice(m.deviceSub))
	cmds = append(cmds, textinput.Blink)
	return tea.Batch(cmds...)
}

func (m model) addressFocused() bool {
	return m.focus == len(m.symbols)
}

func listenForReports(sub report.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func listenForDevice(sub device.Subscriber) tea.Cmd {
	return func() tea.Msg {
		compact, ok := <-sub
		if !ok {
			return nil
		}
		return compactMsg(compact)
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
