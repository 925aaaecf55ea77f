package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"quillcheck/pkg/report"
	"quillcheck/pkg/utils"
)

func (m model) View() string {
	var content string
	if m.ctrl.Mode().IsReporting() {
		content = m.viewReport()
	} else {
		content = m.viewSelecting()
	}

	header := titleStyle.Render("quillcheck") + " " + subtleStyle.Render(Version)
	body := lipgloss.JoinVertical(lipgloss.Left, header, "", content)
	if m.statusMessage != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", infoStyle.Render(m.statusMessage))
	}

	if m.compact || m.width == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m model) viewSelecting() string {
	selected := m.state.ChainSymbol()

	var buttons []string
	for i, sym := range m.symbols {
		style := chainStyle
		switch {
		case sym == selected:
			style = selectedChainStyle
		case i == m.focus:
			style = focusedChainStyle
		}
		label := fmt.Sprintf("%d %s", i+1, sym)
		if i == m.focus {
			label = "› " + label
		}
		buttons = append(buttons, style.Render(label))
	}

	var selector string
	if m.compact {
		selector = lipgloss.JoinVertical(lipgloss.Left, buttons...)
	} else {
		selector = lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	}

	addressLabel := "Token address"
	if m.addressFocused() {
		addressLabel = "› " + addressLabel
	}
	lines := []string{
		tableHeaderStyle.Render("Chain"),
		selector,
		"",
		tableHeaderStyle.Render(addressLabel),
		m.input.View(),
	}

	if m.state.InvalidAddress() {
		lines = append(lines, errStyle.Render(errInvalidAddress))
	}
	if m.state.NoChainSelected() {
		lines = append(lines, errStyle.Render(errNoChain))
	}
	lines = append(lines, "", m.help.ShortHelpView(keys.ShortHelp()))

	form := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if m.compact {
		return form
	}
	return boxStyle.Render(form)
}

func (m model) viewReport() string {
	mode := m.ctrl.Mode()

	addr := mode.Address
	if m.compact {
		addr = utils.ShortAddress(addr, 6)
	}
	title := titleStyle.Render(fmt.Sprintf("Report: %s", mode.Symbol))
	lines := []string{title, subtleStyle.Render(addr)}

	switch {
	case m.loading:
		lines = append(lines, "", fmt.Sprintf("%s Fetching report...", m.spinner.View()))
	case m.fetchErr != nil:
		lines = append(lines, "", errStyle.Render(fmt.Sprintf("Report failed: %v", m.fetchErr)))
	case m.report != nil:
		lines = append(lines, "", m.viewRows(*m.report))
		if !m.compact {
			lines = append(lines, "", m.viewGraph(*m.report))
		}
	}

	lines = append(lines, "", m.help.FullHelpView(keys.FullHelp()))
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if m.compact {
		return content
	}
	return boxStyle.Render(content)
}

func (m model) viewRows(rep report.Report) string {
	var sb strings.Builder
	if rep.TokenName != "" {
		sb.WriteString(infoStyle.Render(utils.TruncateString(rep.TokenName, 40)))
		sb.WriteString("\n")
	}
	for i, row := range rep.Rows() {
		line := fmt.Sprintf("%-8s %8s", row.Label, utils.FormatCount(row.Count))
		sb.WriteString(severityStyles[i].Render(line))
		if i < len(rep.Rows())-1 {
			sb.WriteString("\n")
		}
	}
	if !rep.FetchedAt.IsZero() {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Fetched " + rep.FetchedAt.Format("15:04:05")))
	}
	return sb.String()
}

func (m model) viewGraph(rep report.Report) string {
	if rep.Total() == 0 {
		return subtleStyle.Render("No findings to plot.")
	}
	var data []float64
	for _, row := range rep.Rows() {
		data = append(data, float64(row.Count))
	}
	width := m.width - 20
	if width < 20 {
		width = 20
	}
	if width > 60 {
		width = 60
	}
	return asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(width),
		asciigraph.Caption("Critical → Risky → Medium → Neutral"),
	)
}
