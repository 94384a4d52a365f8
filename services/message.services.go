package services

import (
	"time"

	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/metrics"
	"skillswap_server/schemas"
	"skillswap_server/socket"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
	minio "github.com/minio/minio-go/v7"
)

const objectNameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GetChatUsers lists everyone the caller can open a conversation with.
// Users blocked in either direction are hidden unless includeBlocked is set,
// in which case they come back flagged.
func GetChatUsers(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	includeBlocked := c.Query("includeBlocked") == "true"

	// the caller's own blocks come from one partition scan; only the reverse
	// direction needs a per-row lookup
	blockedOut, err := helpers.BlockedSet(userID)
	if err != nil {
		return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
	}

	iter := global.Session.Query(`
		SELECT user_id, username, avatar_url FROM profiles;`,
	).WithContext(global.Context).PageSize(100).Iter()

	defer iter.Close()

	users := []schemas.ChatUserSchema{}

	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}

		partnerID, _ := row["user_id"].(string)
		if partnerID == userID {
			continue
		}

		blocked, err := helpers.BlockedEitherWay(blockedOut, partnerID, func(id string) (bool, error) {
			return helpers.HasBlocked(id, userID)
		})
		if err != nil {
			return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
		}
		if blocked && !includeBlocked {
			continue
		}

		username, _ := row["username"].(string)
		avatarURL, _ := row["avatar_url"].(string)
		unread, _ := global.RedisClient.HGet(global.Context, "unread:"+userID, partnerID).Int64()

		users = append(users, schemas.ChatUserSchema{
			UserID:    partnerID,
			Username:  username,
			AvatarURL: avatarURL,
			Blocked:   blocked,
			Online:    socket.Online(partnerID),
			Unread:    unread,
		})
	}

	return c.JSON(users)
}

// GetMessages pages a conversation's history. Rows at or before the reset
// watermark are filtered out; if everything visible is gone but raw rows
// remain, they are purged so the store converges on the watermark.
func GetMessages(c *fiber.Ctx) error {

	pairKey := c.Locals("pairkey").(string)

	reqTime := time.Now().UTC()
	if before := c.Query("before"); before != "" {
		milli, err := helpers.ParseStringToInt(before)
		if err != nil {
			return errors.HandleBadRequestError(c, "Before", "invalid")
		}
		reqTime = helpers.MilisecondsToTime(milli)
	}

	limit, err := helpers.ParseStringToInt(c.Query("limit", "50"))
	if err != nil {
		return errors.HandleBadRequestError(c, "Limit", "invalid")
	}

	resetAt, err := helpers.GetResetWatermark(pairKey)
	if err != nil {
		return errors.HandleInternalError(c, "chat_resets", "ScyllaDB: "+err.Error())
	}

	history, err := helpers.GetConversation(pairKey, reqTime, resetAt, false, c.Query("before") == "", limit)
	if err != nil {
		return errors.HandleInternalError(c, "messages", "ScyllaDB: "+err.Error())
	}

	if len(history) == 0 && !resetAt.IsZero() {
		if raw, err := helpers.RawMessageCount(pairKey); err == nil && raw > 0 {
			if err = helpers.PurgeConversation(pairKey, resetAt); err != nil {
				errors.HandleBasicError(err)
			}
		}
	}

	return c.JSON(schemas.ConversationSchema{
		Messages: history,
		ResetAt:  resetAt.UnixMilli(),
	})
}

// SendMessage inserts a chat message. The cached block flag rejects early;
// the store is checked again inside the send so a fresh block can never be
// raced past.
func SendMessage(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	peerID := c.Locals("peerid").(string)
	pairKey := c.Locals("pairkey").(string)

	req := new(schemas.SendMessageSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	return deliverMessage(c, userID, peerID, pairKey, req.Content, "")
}

// SendAttachment stores a file and sends the message carrying it
func SendAttachment(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	peerID := c.Locals("peerid").(string)
	pairKey := c.Locals("pairkey").(string)

	form, err := c.MultipartForm()
	if err != nil {
		return errors.HandleBadRequestError(c, "Form", "invalid")
	}

	if len(form.File["file"]) == 0 {
		return errors.HandleBadRequestError(c, "File", "missing")
	}

	if form.File["file"][0].Size > 10000000 {
		return errors.HandleBadRequestError(c, "File", "exceeding size")
	}

	attachmentFile, err := form.File["file"][0].Open()
	if err != nil {
		return errors.HandleBadRequestError(c, "File", "invalid")
	}
	defer attachmentFile.Close()

	attachmentID, err := nanoid.GenerateString(objectNameAlphabet, 12)
	if err != nil {
		return errors.HandleInternalError(c, "nanoid", err.Error())
	}
	contentType := form.File["file"][0].Header.Get("Content-Type")

	_, err = global.MinIOClient.PutObject(global.Context, global.AttachmentBucket, pairKey+"/"+attachmentID, attachmentFile, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.HandleInternalError(c, "minio_put", err.Error())
	}

	content := ""
	if len(form.Value["content"]) != 0 {
		content = form.Value["content"][0]
	}

	return deliverMessage(c, userID, peerID, pairKey, content, attachmentID)
}

// GetAttachment streams a stored attachment to a conversation participant
func GetAttachment(c *fiber.Ctx) error {

	pairKey := c.Locals("pairkey").(string)
	attachmentID := c.Params("attachmentID")

	object, err := global.MinIOClient.GetObject(global.Context, global.AttachmentBucket, pairKey+"/"+attachmentID, minio.GetObjectOptions{})
	if err != nil {
		return errors.HandleInvalidRequestError(c, "Attachment", "missing")
	}

	return c.SendStream(object)
}

func deliverMessage(c *fiber.Ctx, userID string, peerID string, pairKey string, content string, attachmentID string) error {

	if c.Locals("blockedcached").(bool) {
		return errors.HandleInvalidRequestError(c, "Message", "blocked")
	}

	blocked, err := helpers.IsBlockedPair(userID, peerID)
	if err != nil {
		return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
	}
	if blocked {
		helpers.SetCachedBlockFlag(pairKey, true)
		return errors.HandleInvalidRequestError(c, "Message", "blocked")
	}

	messageID := gocql.TimeUUID()
	created := messageID.Time().UTC()

	err = global.Session.Query(`
		INSERT INTO messages (pair_key,created,message_id,sender_id,receiver_id,content,attachment,read)
		VALUES(?,?,?,?,?,?,?,?);`,
		pairKey,
		created,
		messageID,
		userID,
		peerID,
		content,
		attachmentID,
		false,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "messages", "ScyllaDB: "+err.Error())
	}

	helpers.IncrUnread(peerID, userID)
	metrics.MessagesSent.Inc()

	events.MessageReceived(pairKey, messageID.String(), userID, peerID, content, attachmentID, created.UnixMilli())
	events.UnreadChanged(peerID, helpers.TotalUnread(peerID))

	return c.JSON(schemas.MessageSchema{
		MessageID:  messageID.String(),
		SenderID:   userID,
		ReceiverID: peerID,
		Content:    content,
		Attachment: attachmentID,
		Created:    created.UnixMilli(),
	})
}

// NotifyMessage drops a plain text message into a conversation on behalf of
// the sender without an HTTP request attached, used for session and progress
// notices. Errors are logged instead of surfaced.
func NotifyMessage(senderID string, receiverID string, content string) {

	pairKey := helpers.PairKey(senderID, receiverID)

	messageID := gocql.TimeUUID()
	created := messageID.Time().UTC()

	err := global.Session.Query(`
		INSERT INTO messages (pair_key,created,message_id,sender_id,receiver_id,content,attachment,read)
		VALUES(?,?,?,?,?,?,?,?);`,
		pairKey,
		created,
		messageID,
		senderID,
		receiverID,
		content,
		"",
		false,
	).WithContext(global.Context).Exec()

	if err != nil {
		errors.HandleBasicError(err)
		return
	}

	helpers.IncrUnread(receiverID, senderID)
	metrics.MessagesSent.Inc()

	events.MessageReceived(pairKey, messageID.String(), senderID, receiverID, content, "", created.UnixMilli())
	events.UnreadChanged(receiverID, helpers.TotalUnread(receiverID))
}

// MarkRead clears the caller's unread counter for this conversation
func MarkRead(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	peerID := c.Locals("peerid").(string)
	pairKey := c.Locals("pairkey").(string)

	// flip stored read flags for every incoming message still unread, the
	// iterator pages through the whole partition
	iter := global.Session.Query(`
		SELECT created, receiver_id, read FROM messages WHERE pair_key = ?;`,
		pairKey,
	).WithContext(global.Context).Iter()

	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		created, flip := helpers.UnreadFlipTime(row, userID)
		if !flip {
			continue
		}
		err := global.Session.Query(`
			UPDATE messages SET read = ? WHERE pair_key = ? AND created = ?;`,
			true,
			pairKey,
			created,
		).WithContext(global.Context).Exec()
		if err != nil {
			errors.HandleBasicError(err)
		}
	}
	if err := iter.Close(); err != nil {
		return errors.HandleInternalError(c, "messages", "ScyllaDB: "+err.Error())
	}

	helpers.ClearUnread(userID, peerID)

	readAt := time.Now().UnixMilli()
	events.MessagesRead(pairKey, userID, readAt)
	events.UnreadChanged(userID, helpers.TotalUnread(userID))

	return helpers.OKResponse(c)
}

// BlockUser blocks the peer and flips the cached pair flag
func BlockUser(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	peerID := c.Locals("peerid").(string)
	pairKey := c.Locals("pairkey").(string)

	req := new(schemas.BlockUserSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	err := global.Session.Query(`
		INSERT INTO blocked_users (user_id,blocked_id,reason,created)
		VALUES(?,?,?,?);`,
		userID,
		peerID,
		req.Reason,
		time.Now().UTC(),
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
	}

	helpers.SetCachedBlockFlag(pairKey, true)
	events.BlockChanged(pairKey, userID, peerID, true)

	return helpers.OKResponse(c)
}

// UnblockUser removes the caller's block on the peer. The cached flag only
// clears when no block exists in either direction.
func UnblockUser(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	peerID := c.Locals("peerid").(string)
	pairKey := c.Locals("pairkey").(string)

	err := global.Session.Query(`
		DELETE FROM blocked_users WHERE user_id = ? AND blocked_id = ?;`,
		userID,
		peerID,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
	}

	blocked, err := helpers.IsBlockedPair(userID, peerID)
	if err != nil {
		return errors.HandleInternalError(c, "blocked_users", "ScyllaDB: "+err.Error())
	}

	helpers.SetCachedBlockFlag(pairKey, blocked)
	events.BlockChanged(pairKey, userID, peerID, blocked)

	return helpers.OKResponse(c)
}

// ResetConversation advances the pair's watermark to now. History at or
// before the watermark is never rendered again even if rows linger.
func ResetConversation(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	pairKey := c.Locals("pairkey").(string)

	resetAt := time.Now().UTC()

	err := global.Session.Query(`
		INSERT INTO chat_resets (pair_key,reset_at)
		VALUES(?,?);`,
		pairKey,
		resetAt,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "chat_resets", "ScyllaDB: "+err.Error())
	}

	if err = helpers.PurgeConversation(pairKey, resetAt); err != nil {
		errors.HandleBasicError(err)
	}

	events.ChatReset(pairKey, userID, resetAt.UnixMilli())

	return helpers.OKResponse(c)
}
