package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/config"
	"quillcheck/pkg/models"
	"quillcheck/pkg/rpc"
)

// testConfig checks the configuration structure and probes every RPC URL.
// Text goes to out as it runs; with asJSON only the final report is written.
func testConfig(ctx context.Context, out io.Writer, path string, cfg config.Config, reg *chains.Registry, asJSON bool) models.TestReport {
	printf := func(format string, a ...interface{}) {
		if !asJSON {
			_, _ = fmt.Fprintf(out, format, a...)
		}
	}

	res := models.TestReport{
		ConfigPath:     path,
		ValidStructure: true,
		ReportAPIURL:   cfg.ReportAPIURL,
		ChainCount:     len(cfg.Chains),
	}
	printf("Testing configuration at: %s\n", path)

	if cfg.ReportAPIURL == "" {
		res.StructureErrors = append(res.StructureErrors, "report_api_url is not set.")
	}
	for _, err := range cfg.Validate(reg) {
		res.StructureErrors = append(res.StructureErrors, err.Error())
	}
	for _, msg := range res.StructureErrors {
		printf("Error: %s\n", msg)
	}
	res.ValidStructure = len(res.StructureErrors) == 0

	printf("Found %d chains.\n", len(cfg.Chains))

	for _, ch := range cfg.Chains {
		rule, err := reg.RuleFor(ch.Symbol)
		cResult := models.ChainResult{Symbol: ch.Symbol, Registered: err == nil}
		if err != nil {
			res.Chains = append(res.Chains, cResult)
			continue
		}
		cResult.Native = rule.Native
		cResult.ExpectedChainID = rule.ChainID
		printf("Testing Chain: %s (%d)\n", rule.Name, rule.ChainID)

		var observed int64
		for _, url := range ch.RPCURLs {
			rResult := models.RPCResult{URL: url}
			printf("  RPC: %s ... ", url)

			if rule.Native {
				rResult.Status = "skipped"
				printf("Skipped (not an EVM endpoint)\n")
				cResult.RPCs = append(cResult.RPCs, rResult)
				continue
			}

			probe := rpc.FetchRPCLatency(ctx, url)
			if probe.Err != nil {
				rResult.Status = "error"
				rResult.Error = probe.Err.Error()
				printf("Failed: %v\n", probe.Err)
				cResult.RPCs = append(cResult.RPCs, rResult)
				continue
			}

			rResult.ChainID = probe.ChainID
			rResult.LatencyMS = probe.Latency.Milliseconds()
			if probe.ChainID != rule.ChainID {
				rResult.Status = "mismatch"
				rResult.Error = fmt.Sprintf("Mismatch! Expected %d", rule.ChainID)
				cResult.Inconsistent = true
				printf("MISMATCH! Got %d, expected %d\n", probe.ChainID, rule.ChainID)
			} else {
				rResult.Status = "ok"
				printf("OK (ChainID: %d, %dms)\n", probe.ChainID, rResult.LatencyMS)
			}
			if observed != 0 && observed != probe.ChainID {
				cResult.Inconsistent = true
			}
			observed = probe.ChainID
			cResult.RPCs = append(cResult.RPCs, rResult)
		}

		if cResult.Inconsistent {
			res.InconsistentChains = append(res.InconsistentChains, ch.Symbol)
		}
		res.Chains = append(res.Chains, cResult)
	}

	if len(res.InconsistentChains) > 0 {
		printf("\nWARNING: Inconsistent RPCs detected!\n")
		printf("The following chains have RPCs returning unexpected Chain IDs:\n")
		for _, sym := range res.InconsistentChains {
			printf(" - %s\n", sym)
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	}
	return res
}
