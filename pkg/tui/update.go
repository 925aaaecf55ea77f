package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quillcheck/pkg/flow"
	"quillcheck/pkg/report"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.compact, _ = m.device.Resize(msg.Width)

	case compactMsg:
		m.compact = bool(msg)
		cmds = append(cmds, listenForDevice(m.deviceSub))

	case report.Event:
		// Re-subscribe to next event
		cmds = append(cmds, listenForReports(m.events))

		if !m.ctrl.Mode().IsReporting() || msg.Seq != m.waitingSeq {
			m.log.Debug().Uint64("seq", msg.Seq).Uint64("waiting", m.waitingSeq).Msg("dropping stale report event")
			break
		}
		m.loading = false
		switch msg.Type {
		case report.EventReportLoaded:
			rep := msg.Report
			m.report = &rep
		case report.EventReportFailed:
			m.fetchErr = msg.Err
			if m.fetchErr == nil {
				m.fetchErr = errors.New(msg.Error)
			}
		}

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if m.ctrl.Mode().IsReporting() {
			return m.updateReport(msg)
		}
		return m.updateSelecting(msg)

	case clearStatusMsg:
		m.statusMessage = ""
	}

	if m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateSelecting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.symbols)

	switch {
	case key.Matches(msg, keys.Next):
		cmd := m.setFocus((m.focus + 1) % (n + 1))
		return m, cmd
	case key.Matches(msg, keys.Prev):
		cmd := m.setFocus((m.focus + n) % (n + 1))
		return m, cmd
	case key.Matches(msg, keys.Submit):
		cmd := m.submit()
		return m, cmd
	}

	if m.addressFocused() {
		cmd := m.updateInput(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Left):
		if m.focus > 0 {
			m.focus--
		}
	case key.Matches(msg, keys.Right):
		if m.focus < n-1 {
			m.focus++
		}
	case key.Matches(msg, keys.Pick):
		m.state.PickChain(m.symbols[m.focus])
	case key.Matches(msg, keys.Direct):
		idx := int(msg.Runes[0] - '1')
		if idx < n {
			m.focus = idx
			m.state.PickChain(m.symbols[idx])
		}
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace:
		// Typing anywhere edits the address.
		focusCmd := m.setFocus(n)
		inputCmd := m.updateInput(msg)
		return m, tea.Batch(focusCmd, inputCmd)
	}
	return m, nil
}

func (m model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.ctrl.Mode()

	switch {
	case key.Matches(msg, keys.Back):
		m.ctrl.Back()
		m.loading = false
		m.report = nil
		m.fetchErr = nil
		m.waitingSeq = 0
		m.input.SetValue(m.state.Address())

	case key.Matches(msg, keys.Copy):
		if err := clipboard.WriteAll(mode.Address); err != nil {
			m.statusMessage = "Failed to copy to clipboard"
		} else {
			m.statusMessage = "Address copied to clipboard!"
		}
		return m, clearStatusAfter(2 * time.Second)

	case key.Matches(msg, keys.Explorer):
		ch, ok := m.config.ChainFor(mode.Symbol)
		if !ok || ch.ExplorerURL == "" {
			m.statusMessage = "Explorer URL not configured for this chain"
			return m, clearStatusAfter(2 * time.Second)
		}
		url := fmt.Sprintf("%s/token/%s", strings.TrimRight(ch.ExplorerURL, "/"), mode.Address)
		if err := openBrowser(url); err != nil {
			m.statusMessage = fmt.Sprintf("Failed to open browser: %v", err)
		} else {
			m.statusMessage = "Opened in browser"
		}
		return m, clearStatusAfter(2 * time.Second)
	}
	return m, nil
}

// submit runs the controller and, on entering a report view, hands the
// request to the dispatcher.
func (m *model) submit() tea.Cmd {
	mode := m.ctrl.Submit()
	if !mode.IsReporting() {
		return nil
	}

	m.report = nil
	m.fetchErr = nil
	if m.dispatcher == nil {
		m.fetchErr = report.ErrNoDataSource
		return nil
	}
	m.loading = true
	m.waitingSeq = m.dispatcher.Dispatch(report.Request{
		ChainID: mode.ChainID,
		Address: mode.Address,
		Symbol:  mode.Symbol,
		Native:  mode.Kind == flow.Native,
	})
	return m.spinner.Tick
}

func (m *model) setFocus(i int) tea.Cmd {
	m.focus = i
	if m.addressFocused() {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.state.EditAddress(v)
	}
	return cmd
}
