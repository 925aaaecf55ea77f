package models

import "time"

// RPCLatencyData contains the result of a latency check.
type RPCLatencyData struct {
	RPCURL  string
	ChainID int64
	Latency time.Duration
	Err     error
}

// ChainResult holds test results for a configured chain.
type ChainResult struct {
	Symbol          string      `json:"symbol"`
	Registered      bool        `json:"registered"`
	Native          bool        `json:"native"`
	ExpectedChainID int64       `json:"expected_chain_id"`
	RPCs            []RPCResult `json:"rpcs"`
	Inconsistent    bool        `json:"inconsistent"`
}

// RPCResult holds test results for a specific RPC URL.
type RPCResult struct {
	URL       string `json:"url"`
	Status    string `json:"status"` // "ok", "mismatch", "error" or "skipped"
	ChainID   int64  `json:"chain_id,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TestReport holds the results of the configuration test.
type TestReport struct {
	ConfigPath         string        `json:"config_path"`
	ValidStructure     bool          `json:"valid_structure"`
	StructureErrors    []string      `json:"structure_errors,omitempty"`
	ReportAPIURL       string        `json:"report_api_url"`
	ChainCount         int           `json:"chain_count"`
	Chains             []ChainResult `json:"chains,omitempty"`
	InconsistentChains []string      `json:"inconsistent_chains,omitempty"`
}

// OK reports whether the configuration passed every check.
func (r TestReport) OK() bool {
	return r.ValidStructure && len(r.InconsistentChains) == 0
}
