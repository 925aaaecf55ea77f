package report

import (
	"fmt"
	"time"
)

// Severity is a finding bucket. The order of Severities is the display order.
type Severity string

const (
	Critical Severity = "critical"
	Risky    Severity = "risky"
	Medium   Severity = "medium"
	Neutral  Severity = "neutral"
)

var severities = []Severity{Critical, Risky, Medium, Neutral}

// Severities returns the four buckets in display order.
func Severities() []Severity {
	return append([]Severity(nil), severities...)
}

// Label is the human-readable name of the bucket.
func (s Severity) Label() string {
	switch s {
	case Critical:
		return "Critical"
	case Risky:
		return "Risky"
	case Medium:
		return "Medium"
	case Neutral:
		return "Neutral"
	}
	return string(s)
}

// Request identifies the token a report is wanted for.
type Request struct {
	ChainID int64  `json:"chain_id"`
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Native  bool   `json:"native"`
}

func (r Request) String() string {
	return fmt.Sprintf("%s:%d:%s", r.Symbol, r.ChainID, r.Address)
}

// Report holds finding counts per severity.
type Report struct {
	Critical  int       `json:"critical"`
	Risky     int       `json:"risky"`
	Medium    int       `json:"medium"`
	Neutral   int       `json:"neutral"`
	TokenName string    `json:"token_name,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Count returns the count for one severity.
func (r Report) Count(s Severity) int {
	switch s {
	case Critical:
		return r.Critical
	case Risky:
		return r.Risky
	case Medium:
		return r.Medium
	case Neutral:
		return r.Neutral
	}
	return 0
}

func (r Report) Total() int {
	return r.Critical + r.Risky + r.Medium + r.Neutral
}

// Row is a label/count pair as rendered in the report view.
type Row struct {
	Severity Severity `json:"severity"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

// Rows lists the counts in display order.
func (r Report) Rows() []Row {
	rows := make([]Row, 0, len(severities))
	for _, s := range severities {
		rows = append(rows, Row{Severity: s, Label: s.Label(), Count: r.Count(s)})
	}
	return rows
}
