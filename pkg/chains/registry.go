package chains

import (
	"errors"
	"fmt"
)

// ErrUnregisteredSymbol is returned when a symbol has no rule in the registry.
var ErrUnregisteredSymbol = errors.New("symbol not registered")

// EVMAddressLength is the length of a 0x-prefixed hex address.
const EVMAddressLength = 42

// LengthRule bounds an address length inclusively. Min == Max means exact.
type LengthRule struct {
	Min int
	Max int
}

// Exact returns a rule that accepts only n characters.
func Exact(n int) LengthRule {
	return LengthRule{Min: n, Max: n}
}

// Range returns a rule that accepts min..max characters.
func Range(min, max int) LengthRule {
	return LengthRule{Min: min, Max: max}
}

// IsExact reports whether only one length is accepted.
func (l LengthRule) IsExact() bool {
	return l.Min == l.Max
}

// Allows reports whether n lies within the bounds.
func (l LengthRule) Allows(n int) bool {
	return n >= l.Min && n <= l.Max
}

func (l LengthRule) String() string {
	if l.IsExact() {
		return fmt.Sprintf("%d", l.Min)
	}
	return fmt.Sprintf("%d-%d", l.Min, l.Max)
}

// ChainRule describes a selectable token chain and its address format.
type ChainRule struct {
	Symbol  string
	Name    string
	ChainID int64
	Length  LengthRule
	// Native marks the single non-EVM chain with its own address format.
	Native bool
}

// Registry is an immutable, ordered symbol -> rule table.
type Registry struct {
	order []string
	rules map[string]ChainRule
}

// NewRegistry builds a registry. Symbols keep the order they are given in.
func NewRegistry(rules ...ChainRule) (*Registry, error) {
	r := &Registry{rules: make(map[string]ChainRule, len(rules))}
	for i, rule := range rules {
		if rule.Symbol == "" {
			return nil, fmt.Errorf("rule at index %d has no symbol", i)
		}
		if _, dup := r.rules[rule.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %q", rule.Symbol)
		}
		if rule.Length.Min <= 0 || rule.Length.Min > rule.Length.Max {
			return nil, fmt.Errorf("symbol %q has invalid length rule %d-%d", rule.Symbol, rule.Length.Min, rule.Length.Max)
		}
		r.rules[rule.Symbol] = rule
		r.order = append(r.order, rule.Symbol)
	}
	return r, nil
}

// DefaultRules are the selectable chains in display order.
func DefaultRules() []ChainRule {
	return []ChainRule{
		{Symbol: "ETH", Name: "Ethereum", ChainID: 1, Length: Exact(EVMAddressLength)},
		{Symbol: "BSC", Name: "BNB Smart Chain", ChainID: 56, Length: Exact(EVMAddressLength)},
		{Symbol: "POL", Name: "Polygon", ChainID: 137, Length: Exact(EVMAddressLength)},
		{Symbol: "Base", Name: "Base", ChainID: 8453, Length: Exact(EVMAddressLength)},
		// Solana has no EVM chain id; 501 is its SLIP-44 coin type.
		{Symbol: "SOL", Name: "Solana", ChainID: 501, Length: Range(43, 47), Native: true},
	}
}

// Default returns the registry of DefaultRules.
func Default() *Registry {
	r, err := NewRegistry(DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return r
}

// RuleFor looks up the rule for symbol.
func (r *Registry) RuleFor(symbol string) (ChainRule, error) {
	rule, ok := r.rules[symbol]
	if !ok {
		return ChainRule{}, fmt.Errorf("%w: %q", ErrUnregisteredSymbol, symbol)
	}
	return rule, nil
}

// Symbols returns the registered symbols in selector order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Rules returns all rules in selector order.
func (r *Registry) Rules() []ChainRule {
	out := make([]ChainRule, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.rules[s])
	}
	return out
}

// ForChainID finds the rule with the given chain id.
func (r *Registry) ForChainID(id int64) (ChainRule, bool) {
	for _, s := range r.order {
		if r.rules[s].ChainID == id {
			return r.rules[s], true
		}
	}
	return ChainRule{}, false
}

// Len is the number of registered chains.
func (r *Registry) Len() int {
	return len(r.order)
}
