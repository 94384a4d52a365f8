package helpers

import "testing"

func TestAllowedTransition(t *testing.T) {

	tests := []struct {
		name    string
		role    string
		action  string
		current string
		want    string
		ok      bool
	}{
		{"provider accepts pending", RoleProvider, ActionAccept, ExchangePending, ExchangeActive, true},
		{"provider declines pending", RoleProvider, ActionDecline, ExchangePending, ExchangeCancelled, true},
		{"provider abandons active", RoleProvider, ActionAbandon, ExchangeActive, ExchangeCancelled, true},
		{"requester abandons pending", RoleRequester, ActionAbandon, ExchangePending, ExchangeCancelled, true},
		{"requester abandons active", RoleRequester, ActionAbandon, ExchangeActive, ExchangeCancelled, true},
		{"system completes active", RoleSystem, ActionComplete, ExchangeActive, ExchangeCompleted, true},
		{"requester cannot accept", RoleRequester, ActionAccept, ExchangePending, "", false},
		{"provider cannot accept active", RoleProvider, ActionAccept, ExchangeActive, "", false},
		{"no action out of completed", RoleProvider, ActionAbandon, ExchangeCompleted, "", false},
		{"no action out of cancelled", RoleRequester, ActionAbandon, ExchangeCancelled, "", false},
		{"unknown role", "observer", ActionAccept, ExchangePending, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AllowedTransition(tt.role, tt.action, tt.current)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("AllowedTransition(%s,%s,%s) = (%q,%v), want (%q,%v)",
					tt.role, tt.action, tt.current, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTerminalStatus(t *testing.T) {
	if TerminalStatus(ExchangePending) || TerminalStatus(ExchangeActive) {
		t.Fatal("open statuses reported terminal")
	}
	if !TerminalStatus(ExchangeCompleted) || !TerminalStatus(ExchangeCancelled) {
		t.Fatal("closed statuses not reported terminal")
	}

	// the confirm path gates on this so a cancelled exchange can no longer
	// collect session confirmations or XP
	t.Run("settled exchange gates confirmation", func(t *testing.T) {
		for _, status := range []string{ExchangeCancelled, ExchangeCompleted} {
			if !TerminalStatus(status) {
				t.Fatalf("%s exchange would still accept confirmations", status)
			}
		}
	})
}

func TestExchangeRole(t *testing.T) {

	t.Run("requester", func(t *testing.T) {
		role, ok := ExchangeRole("u1", "u1", "u2")
		if !ok || role != RoleRequester {
			t.Fatalf("got (%q,%v)", role, ok)
		}
	})

	t.Run("provider", func(t *testing.T) {
		role, ok := ExchangeRole("u2", "u1", "u2")
		if !ok || role != RoleProvider {
			t.Fatalf("got (%q,%v)", role, ok)
		}
	})

	t.Run("outsider", func(t *testing.T) {
		if _, ok := ExchangeRole("u3", "u1", "u2"); ok {
			t.Fatal("outsider resolved to a role")
		}
	})
}

func TestCapSessions(t *testing.T) {

	tests := []struct {
		name  string
		next  int
		total int
		want  int
	}{
		{"within total", 2, 3, 2},
		{"at total", 3, 3, 3},
		{"over total", 4, 3, 3},
		{"negative", -1, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapSessions(tt.next, tt.total); got != tt.want {
				t.Fatalf("CapSessions(%d,%d) = %d, want %d", tt.next, tt.total, got, tt.want)
			}
		})
	}
}

func TestNextSessionIndex(t *testing.T) {
	if got := NextSessionIndex(0, 3); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := NextSessionIndex(2, 3); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
	// a final-session request still confirms as session total, not beyond
	if got := NextSessionIndex(3, 3); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}
