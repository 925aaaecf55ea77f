package chains

import (
	"unicode/utf8"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
)

// solanaKeyLength is the size of a decoded ed25519 public key.
const solanaKeyLength = 32

// ValidAddress reports whether address satisfies the rule's length check.
// Length counts characters, not bytes. The string is taken verbatim; no
// trimming or case folding.
func ValidAddress(rule ChainRule, address string) bool {
	return rule.Length.Allows(utf8.RuneCountInString(address))
}

// Validator checks addresses against chain rules. The zero value applies
// only the length rule; Strict additionally checks the encoding.
type Validator struct {
	Strict bool
}

// Valid applies the length rule and, when Strict, the chain's encoding.
func (v Validator) Valid(rule ChainRule, address string) bool {
	if !ValidAddress(rule, address) {
		return false
	}
	if !v.Strict {
		return true
	}
	if rule.Native {
		return len(base58.Decode(address)) == solanaKeyLength
	}
	return common.IsHexAddress(address) && len(address) == EVMAddressLength
}
