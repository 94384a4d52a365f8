package helpers

import (
	Errors "errors"
	"time"

	"skillswap_server/global"

	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"

	"skillswap_server/schemas"
)

// GetConversation gets a limited slice of a pair's history around reqTime.
// Rows at or before the reset watermark are never returned.
func GetConversation(pairKey string, reqTime time.Time, resetAt time.Time, asc bool, newest bool, limit int64) ([]schemas.MessageSchema, error) {

	var iter *gocql.Iter

	if limit > 50 {
		limit = 50
	} else if limit <= 0 {
		return []schemas.MessageSchema{}, nil
	}

	if !newest {
		if asc {
			iter = global.Session.Query(`
				SELECT * FROM messages WHERE pair_key = ? AND created > ? ORDER BY created ASC LIMIT ?;`,
				pairKey,
				reqTime,
				limit,
			).WithContext(global.Context).Iter()
		} else {
			iter = global.Session.Query(`
				SELECT * FROM messages WHERE pair_key = ? AND created < ? LIMIT ?;`,
				pairKey,
				reqTime,
				limit,
			).WithContext(global.Context).Iter()
		}
	} else {
		iter = global.Session.Query(`
			SELECT * FROM messages WHERE pair_key = ? AND created <= ? LIMIT ?;`,
			pairKey,
			reqTime,
			limit,
		).WithContext(global.Context).Iter()
	}

	defer iter.Close()
	history := []schemas.MessageSchema{}

	var (
		messageID  gocql.UUID
		ok         bool
		curMessage schemas.MessageSchema
	)
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}

		if messageID, ok = row["message_id"].(gocql.UUID); ok {
			curMessage.MessageID = messageID.String()
			curMessage.SenderID, _ = row["sender_id"].(string)
			curMessage.ReceiverID, _ = row["receiver_id"].(string)
			curMessage.Content, _ = row["content"].(string)
			curMessage.Attachment, _ = row["attachment"].(string)
			curMessage.Read, _ = row["read"].(bool)
			curMessage.Created = messageID.Time().UnixMilli()
			history = append(history, curMessage)
		} else {
			return nil, Errors.New("iter error")
		}
	}

	if !asc {
		for i := 0; i < len(history)/2; i++ {
			j := len(history) - i - 1
			history[i], history[j] = history[j], history[i]
		}
	}

	return FilterByWatermark(history, resetAt.UnixMilli()), nil
}

// FilterByWatermark drops messages created at or before the reset watermark
func FilterByWatermark(history []schemas.MessageSchema, resetAtMilli int64) []schemas.MessageSchema {
	if resetAtMilli <= 0 {
		return history
	}
	visible := history[:0]
	for _, msg := range history {
		if msg.Created > resetAtMilli {
			visible = append(visible, msg)
		}
	}
	return visible
}

// UnreadFlipTime picks out a message row the reader still has to mark read,
// returning its clustering timestamp. Rows already read or addressed to the
// other side are skipped.
func UnreadFlipTime(row map[string]interface{}, readerID string) (time.Time, bool) {
	receiverID, _ := row["receiver_id"].(string)
	read, _ := row["read"].(bool)
	created, ok := row["created"].(time.Time)
	if !ok || read || receiverID != readerID {
		return time.Time{}, false
	}
	return created, true
}

// GetResetWatermark reads a pair's reset watermark; the zero time means the
// conversation was never reset.
func GetResetWatermark(pairKey string) (time.Time, error) {
	var resetAt time.Time
	err := global.Session.Query(`
		SELECT reset_at FROM chat_resets WHERE pair_key = ? LIMIT 1;`,
		pairKey,
	).WithContext(global.Context).Scan(&resetAt)
	if err == gocql.ErrNotFound {
		return time.Time{}, nil
	}
	return resetAt, err
}

// PurgeConversation range-deletes rows at or before the watermark. The
// watermark stays authoritative; this is the physical-deletion fallback for
// resets whose rows are still around.
func PurgeConversation(pairKey string, resetAt time.Time) error {
	return global.Session.Query(`
		DELETE FROM messages WHERE pair_key = ? AND created <= ?;`,
		pairKey,
		resetAt,
	).WithContext(global.Context).Exec()
}

// RawMessageCount counts stored rows for a pair regardless of watermark
func RawMessageCount(pairKey string) (int, error) {
	var count int
	err := global.Session.Query(`
		SELECT count(*) FROM messages WHERE pair_key = ?;`,
		pairKey,
	).WithContext(global.Context).Scan(&count)
	return count, err
}

// IsBlockedPair checks the store for a block row in either direction
func IsBlockedPair(userA string, userB string) (bool, error) {

	blocked, err := HasBlocked(userA, userB)
	if err != nil || blocked {
		return blocked, err
	}
	return HasBlocked(userB, userA)
}

// HasBlocked checks a single direction
func HasBlocked(blockerID string, blockedID string) (bool, error) {

	var existCount int

	err := global.Session.Query(`
		SELECT count(*) FROM blocked_users WHERE user_id = ? AND blocked_id = ? LIMIT 1;`,
		blockerID,
		blockedID,
	).WithContext(global.Context).Scan(&existCount)
	if err != nil {
		return false, err
	}
	return existCount != 0, nil
}

// BlockedSet reads every block the user holds in one partition scan
func BlockedSet(userID string) (map[string]bool, error) {

	iter := global.Session.Query(`
		SELECT blocked_id FROM blocked_users WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	set := make(map[string]bool)
	var blockedID string
	for iter.Scan(&blockedID) {
		set[blockedID] = true
	}
	return set, iter.Close()
}

// BlockedEitherWay resolves a pair's block state from the caller's prefetched
// outgoing set, touching the store for the reverse direction only on a miss
func BlockedEitherWay(outgoing map[string]bool, partnerID string, reverse func(string) (bool, error)) (bool, error) {
	if outgoing[partnerID] {
		return true, nil
	}
	return reverse(partnerID)
}

// CachedBlockFlag is the fast-path block check backed by redis. A cache miss
// reports not-blocked; senders must still run IsBlockedPair before insert.
func CachedBlockFlag(pairKey string) bool {
	val, err := global.RedisClient.Get(global.Context, "blockpair:"+pairKey).Result()
	if err == redis.Nil || err != nil {
		return false
	}
	return val == "1"
}

// SetCachedBlockFlag updates the fast-path block flag
func SetCachedBlockFlag(pairKey string, blocked bool) {
	val := "0"
	if blocked {
		val = "1"
	}
	if err := global.RedisClient.Set(global.Context, "blockpair:"+pairKey, val, 0).Err(); err != nil {
		global.MonitorLogger.Println("block cache; Problem: " + pairKey + "; Error: " + err.Error())
	}
}

// IncrUnread bumps the unread counter a receiver sees for a sender
func IncrUnread(receiverID string, senderID string) int64 {
	count, err := global.RedisClient.HIncrBy(global.Context, "unread:"+receiverID, senderID, 1).Result()
	if err != nil {
		global.MonitorLogger.Println("unread incr; Problem: " + receiverID + "; Error: " + err.Error())
		return 0
	}
	return count
}

// ClearUnread zeroes the unread counter for a sender
func ClearUnread(receiverID string, senderID string) {
	if err := global.RedisClient.HDel(global.Context, "unread:"+receiverID, senderID).Err(); err != nil {
		global.MonitorLogger.Println("unread clear; Problem: " + receiverID + "; Error: " + err.Error())
	}
}

// TotalUnread sums unread counters across all senders
func TotalUnread(receiverID string) int64 {
	fields, err := global.RedisClient.HGetAll(global.Context, "unread:"+receiverID).Result()
	if err != nil {
		return 0
	}
	var total int64
	for _, raw := range fields {
		if n, err := ParseStringToInt(raw); err == nil {
			total += n
		}
	}
	return total
}
