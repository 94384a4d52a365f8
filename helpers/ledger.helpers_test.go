package helpers

import "testing"

func TestProratedRefundMinor(t *testing.T) {

	tests := []struct {
		name      string
		completed int
		total     int
		want      int64
	}{
		{"nothing completed", 0, 3, 100},
		{"one of three", 1, 3, 67},
		{"two of three", 2, 3, 33},
		{"all completed", 3, 3, 0},
		{"over completed clamps", 4, 3, 0},
		{"negative completed clamps", -1, 3, 100},
		{"zero total", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProratedRefundMinor(tt.completed, tt.total); got != tt.want {
				t.Fatalf("ProratedRefundMinor(%d,%d) = %d, want %d", tt.completed, tt.total, got, tt.want)
			}
		})
	}
}

func TestLedgerOpKeys(t *testing.T) {

	const exchangeID = "8b0d7c2a-1111-2222-3333-444455556666"

	propose := ProposeOpKey(exchangeID)
	refund := RefundOpKey(exchangeID)
	proposeFail := ProposeFailOpKey(exchangeID)

	t.Run("three distinct scopes per exchange", func(t *testing.T) {
		if propose == refund || propose == proposeFail || refund == proposeFail {
			t.Fatalf("scopes collide: %q %q %q", propose, refund, proposeFail)
		}
	})

	t.Run("failed proposal reversal has its own deterministic scope", func(t *testing.T) {
		if got := ProposeFailOpKey(exchangeID); got != proposeFail {
			t.Fatalf("got %q, want %q", got, proposeFail)
		}
	})

	t.Run("terminal refund scope is shared across decline and abandon", func(t *testing.T) {
		if got := RefundOpKey(exchangeID); got != "refund:"+exchangeID {
			t.Fatalf("got %q", got)
		}
	})
}

func TestCreditsFromMinor(t *testing.T) {
	if got := CreditsFromMinor(StartingCreditsMinor); got != 10 {
		t.Fatalf("starting balance = %v, want 10", got)
	}
	if got := CreditsFromMinor(67); got != 0.67 {
		t.Fatalf("got %v, want 0.67", got)
	}
	if got := CreditsFromMinor(0); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
