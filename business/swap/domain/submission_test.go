package domain

import "testing"

func TestNormalizeSubmission(t *testing.T) {
	tests := []struct {
		name     string
		resp     any
		wantHash string
		resolved bool
	}{
		{"top-level hash", map[string]any{"hash": "0xabc"}, "0xabc", true},
		{"nested result", map[string]any{"result": map[string]any{"hash": "0xdef"}}, "0xdef", true},
		{"bare string", "0x123", "0x123", true},
		{"transactionHash", map[string]any{"transactionHash": "0x1"}, "0x1", true},
		{"nested data", map[string]any{"data": map[string]any{"hash": "0x2"}}, "0x2", true},
		{"snake case", map[string]any{"transaction_hash": "0x3"}, "0x3", true},
		{"probe order", map[string]any{"txnHash": "0x5", "signature": "0x4"}, "0x4", true},
		{"skips non-hex candidate", map[string]any{"hash": "pending", "txnHash": "0x6"}, "0x6", true},
		{"non-string hash", map[string]any{"hash": 42}, "", false},
		{"no hash", map[string]any{"status": "ok"}, "", false},
		{"plain string", "done", "", false},
		{"bare prefix", "0x", "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSubmission(tt.resp)
			if got.Hash != tt.wantHash || got.Resolved != tt.resolved {
				t.Errorf("NormalizeSubmission() = %+v, want hash %q resolved %v", got, tt.wantHash, tt.resolved)
			}
		})
	}
}

func TestExplorerURL(t *testing.T) {
	got := ExplorerURL("https://explorer.aptoslabs.com/", "0xabc", "devnet")
	want := "https://explorer.aptoslabs.com/txn/0xabc?network=devnet"
	if got != want {
		t.Errorf("ExplorerURL() = %q, want %q", got, want)
	}
}

func TestSwapSummary(t *testing.T) {
	got := SwapSummary("1.000000", "APT", "9.970000", "USDC", "9.920150")
	want := "Swap executed: 1.000000 APT → 9.970000 USDC (Min: 9.920150)"
	if got != want {
		t.Errorf("SwapSummary() = %q, want %q", got, want)
	}
}
