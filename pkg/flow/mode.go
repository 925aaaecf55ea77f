package flow

import "fmt"

// Kind distinguishes the two report views.
type Kind int

const (
	Fungible Kind = iota
	Native
)

func (k Kind) String() string {
	if k == Native {
		return "native"
	}
	return "fungible"
}

// ViewMode is the current view: Selecting, or Reporting on a validated token.
type ViewMode struct {
	reporting bool
	Kind      Kind
	Symbol    string
	Address   string
	ChainID   int64
}

// Selecting is the selection view.
var Selecting = ViewMode{}

// Reporting builds a report-view mode.
func Reporting(kind Kind, symbol, address string, chainID int64) ViewMode {
	return ViewMode{reporting: true, Kind: kind, Symbol: symbol, Address: address, ChainID: chainID}
}

func (v ViewMode) IsSelecting() bool { return !v.reporting }
func (v ViewMode) IsReporting() bool { return v.reporting }

func (v ViewMode) String() string {
	if !v.reporting {
		return "selecting"
	}
	return fmt.Sprintf("reporting(%s, %s, %s, %d)", v.Kind, v.Symbol, v.Address, v.ChainID)
}

// Name is the short mode name used in logs and the HTTP API.
func (v ViewMode) Name() string {
	if !v.reporting {
		return "selecting"
	}
	return "reporting_" + v.Kind.String()
}
