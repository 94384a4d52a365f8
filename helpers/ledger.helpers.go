package helpers

import (
	Errors "errors"
	"math"
	"strconv"

	"skillswap_server/global"

	"github.com/go-redis/redis/v8"
)

// Credits are held in integer hundredths so prorated refunds stay exact.

// StartingCreditsMinor is the balance of a fresh profile (10 credits)
const StartingCreditsMinor int64 = 1000

// ProposalCostMinor is the price of proposing a swap (1 credit)
const ProposalCostMinor int64 = 100

// DeclineRefundMinor is returned to the requester on a declined request
const DeclineRefundMinor int64 = 100

// ErrInsufficientCredits is returned when a debit would go negative
var ErrInsufficientCredits = Errors.New("insufficient credits")

// CreditsFromMinor converts hundredths into the display amount
func CreditsFromMinor(minor int64) float64 {
	return float64(minor) / 100
}

// Ledger operation keys. The propose debit, the terminal refund, and the
// reversal of a proposal whose rows never landed are three separate scopes
// on the same exchange, so compensating a failed proposal is never blocked
// by the original debit's claim and never consumes the decline/abandon
// refund.
func ProposeOpKey(exchangeID string) string {
	return "propose:" + exchangeID
}

func RefundOpKey(exchangeID string) string {
	return "refund:" + exchangeID
}

func ProposeFailOpKey(exchangeID string) string {
	return "refund:propose-fail:" + exchangeID
}

// ProratedRefundMinor is the abandon refund: (remaining/total) of one credit,
// rounded to hundredths.
func ProratedRefundMinor(completed int, total int) int64 {
	if total <= 0 {
		return 0
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	return int64(math.Round(float64(total-completed) / float64(total) * 100))
}

// ApplyLedger applies a signed credit delta to a profile exactly once per
// operation key. The key is claimed in redis before the balance moves, so a
// repeated decline or a decline racing an abandon cannot double-apply; the
// balance itself moves through an LWT compare-and-swap loop.
func ApplyLedger(userID string, opKey string, deltaMinor int64) (int64, bool, error) {

	claimed, err := global.RedisClient.SetNX(global.Context, "ledger:"+opKey, deltaMinor, 0).Result()
	if err != nil {
		return 0, false, err
	}
	if !claimed {
		balance, err := CurrentBalanceMinor(userID)
		return balance, false, err
	}

	for attempt := 0; attempt < 8; attempt++ {
		balance, err := CurrentBalanceMinor(userID)
		if err != nil {
			return 0, false, releaseClaim(opKey, err)
		}

		next := balance + deltaMinor
		if next < 0 {
			return balance, false, releaseClaim(opKey, ErrInsufficientCredits)
		}

		applied, err := global.Session.Query(`
			UPDATE profiles SET credits_minor = ? WHERE user_id = ? IF credits_minor = ?;`,
			next,
			userID,
			balance,
		).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))
		if err != nil {
			return 0, false, releaseClaim(opKey, err)
		}
		if applied {
			cacheCredits(userID, next)
			return next, true, nil
		}
	}

	return 0, false, releaseClaim(opKey, Errors.New("ledger cas retries exhausted"))
}

// CurrentBalanceMinor reads the authoritative balance
func CurrentBalanceMinor(userID string) (int64, error) {
	var minor int64
	err := global.Session.Query(`
		SELECT credits_minor FROM profiles WHERE user_id = ? LIMIT 1;`,
		userID,
	).WithContext(global.Context).Scan(&minor)
	return minor, err
}

// CachedCreditsMinor reads the optimistic display copy, falling back to the
// starting balance when no cache entry exists yet.
func CachedCreditsMinor(userID string) int64 {
	val, err := global.RedisClient.HGet(global.Context, "prefs:"+userID, "credits").Result()
	if err == redis.Nil {
		return StartingCreditsMinor
	}
	if err != nil {
		return StartingCreditsMinor
	}
	minor, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return StartingCreditsMinor
	}
	return minor
}

func cacheCredits(userID string, minor int64) {
	if err := global.RedisClient.HSet(global.Context, "prefs:"+userID, "credits", minor).Err(); err != nil {
		global.MonitorLogger.Println("prefs cache; Problem: credits; Error: " + err.Error())
	}
}

// releaseClaim frees the idempotency key after a failed apply so the
// operation stays retryable, then passes the original error through.
func releaseClaim(opKey string, cause error) error {
	if err := global.RedisClient.Del(global.Context, "ledger:"+opKey).Err(); err != nil {
		global.MonitorLogger.Println("ledger claim release; Problem: " + opKey + "; Error: " + err.Error())
	}
	return cause
}
