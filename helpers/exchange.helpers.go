package helpers

import (
	"skillswap_server/global"
)

// Exchange statuses
const (
	ExchangePending   = "pending"
	ExchangeActive    = "active"
	ExchangeCompleted = "completed"
	ExchangeCancelled = "cancelled"
)

// Roles a caller can hold on an exchange
const (
	RoleRequester = "requester"
	RoleProvider  = "provider"
	RoleSystem    = "system"
)

// DefaultTotalSessions is the session count a new exchange starts with
const DefaultTotalSessions = 3

// Exchange actions
const (
	ActionAccept   = "accept"
	ActionDecline  = "decline"
	ActionAbandon  = "abandon"
	ActionComplete = "complete"
)

type exchangeTransition struct {
	From string
	To   string
}

// exchangeTransitions is the single authority on who may move an exchange
// where. Every status change in the repo goes through AllowedTransition +
// ApplyTransition; there is no second path.
var exchangeTransitions = map[string]map[string][]exchangeTransition{
	RoleProvider: {
		ActionAccept:  {{From: ExchangePending, To: ExchangeActive}},
		ActionDecline: {{From: ExchangePending, To: ExchangeCancelled}},
		ActionAbandon: {{From: ExchangeActive, To: ExchangeCancelled}},
	},
	RoleRequester: {
		ActionAbandon: {
			{From: ExchangePending, To: ExchangeCancelled},
			{From: ExchangeActive, To: ExchangeCancelled},
		},
	},
	RoleSystem: {
		ActionComplete: {{From: ExchangeActive, To: ExchangeCompleted}},
	},
}

// AllowedTransition resolves the target status for (role, action) from the
// current status; ok is false when the table has no matching row.
func AllowedTransition(role string, action string, current string) (string, bool) {
	actions, ok := exchangeTransitions[role]
	if !ok {
		return "", false
	}
	for _, t := range actions[action] {
		if t.From == current {
			return t.To, true
		}
	}
	return "", false
}

// TerminalStatus reports whether an exchange can never move again
func TerminalStatus(status string) bool {
	return status == ExchangeCompleted || status == ExchangeCancelled
}

// ExchangeRole resolves the caller's role on an exchange
func ExchangeRole(userID string, requesterID string, providerID string) (string, bool) {
	switch userID {
	case requesterID:
		return RoleRequester, true
	case providerID:
		return RoleProvider, true
	}
	return "", false
}

// ApplyTransition moves an exchange between statuses with an LWT guard, so
// two concurrent actions on the same exchange resolve to exactly one winner.
func ApplyTransition(exchangeID string, from string, to string) (bool, error) {
	return global.Session.Query(`
		UPDATE exchanges SET status = ? WHERE exchange_id = ? IF status = ?;`,
		to,
		exchangeID,
		from,
	).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))
}

// CapSessions clamps a session counter so completed_sessions never exceeds
// total_sessions.
func CapSessions(next int, total int) int {
	if next > total {
		return total
	}
	if next < 0 {
		return 0
	}
	return next
}

// NextSessionIndex is the index a newly scheduled session confirms
func NextSessionIndex(completed int, total int) int {
	return CapSessions(completed+1, total)
}
