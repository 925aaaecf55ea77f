package selection

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"quillcheck/pkg/chains"
)

var (
	// ErrNoChainSelected means submit was attempted before picking a chain.
	ErrNoChainSelected = errors.New("no chain selected")
	// ErrAddressInvalid means the address does not fit the chain's format.
	ErrAddressInvalid = errors.New("invalid token address")
	// ErrUnregisteredSymbol is an internal fault: the UI offered a symbol
	// the registry does not know.
	ErrUnregisteredSymbol = chains.ErrUnregisteredSymbol
)

// Choice is a validated (chain, address) pair ready for a report.
type Choice struct {
	Symbol  string
	Address string
	ChainID int64
	Native  bool
}

// State holds the in-progress selection and the error flags shown to the user.
type State struct {
	chainSymbol     string
	address         string
	invalidAddress  bool
	noChainSelected bool
}

// New returns an empty selection.
func New() *State {
	return &State{}
}

// PickChain selects a chain and clears the "select the chain" prompt.
func (s *State) PickChain(symbol string) {
	s.chainSymbol = symbol
	s.noChainSelected = false
}

// EditAddress replaces the address text and clears the invalid-address prompt.
// The no-chain prompt is left alone; only picking a chain clears it.
func (s *State) EditAddress(text string) {
	s.address = text
	s.invalidAddress = false
}

// Validate checks the selection against reg. Checks run in order and the
// first failure wins: missing chain, unknown symbol, address format.
func (s *State) Validate(reg *chains.Registry, v chains.Validator) (Choice, error) {
	if s.chainSymbol == "" {
		return Choice{}, ErrNoChainSelected
	}
	rule, err := reg.RuleFor(s.chainSymbol)
	if err != nil {
		return Choice{}, err
	}
	if !v.Valid(rule, s.address) {
		return Choice{}, fmt.Errorf("%w for %s: length %d, want %s", ErrAddressInvalid, rule.Symbol, utf8.RuneCountInString(s.address), rule.Length)
	}
	return Choice{
		Symbol:  rule.Symbol,
		Address: s.address,
		ChainID: rule.ChainID,
		Native:  rule.Native,
	}, nil
}

func (s *State) ChainSymbol() string   { return s.chainSymbol }
func (s *State) Address() string       { return s.address }
func (s *State) InvalidAddress() bool  { return s.invalidAddress }
func (s *State) NoChainSelected() bool { return s.noChainSelected }

// MarkInvalidAddress raises the invalid-address flag. The other flag is untouched.
func (s *State) MarkInvalidAddress() {
	s.invalidAddress = true
}

// MarkNoChainSelected raises the no-chain flag. The other flag is untouched.
func (s *State) MarkNoChainSelected() {
	s.noChainSelected = true
}

// ClearFlags resets both error flags.
func (s *State) ClearFlags() {
	s.invalidAddress = false
	s.noChainSelected = false
}

// Reset empties the selection and both flags.
func (s *State) Reset() {
	*s = State{}
}

// Snapshot is a read-only copy of State, used for rendering and the HTTP API.
type Snapshot struct {
	ChainSymbol     string `json:"chain_symbol"`
	Address         string `json:"address"`
	InvalidAddress  bool   `json:"invalid_address"`
	NoChainSelected bool   `json:"no_chain_selected"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		ChainSymbol:     s.chainSymbol,
		Address:         s.address,
		InvalidAddress:  s.invalidAddress,
		NoChainSelected: s.noChainSelected,
	}
}
