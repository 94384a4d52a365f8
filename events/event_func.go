package events

// Conversation events are published on the pair key so both participants'
// sockets receive them regardless of which server holds the connection.

func MessageReceived(pairKey string, messageID string, senderID string, receiverID string, content string, attachment string, created int64) error {
	return publish(message_received, Topic(TopicConversation, pairKey), senderID, message_received_data{
		MessageID:  messageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Attachment: attachment,
		Created:    created,
	})
}

func MessagesRead(pairKey string, readerID string, readAt int64) error {
	return publish(messages_read, Topic(TopicConversation, pairKey), readerID, messages_read_data{
		ReaderID: readerID,
		ReadAt:   readAt,
	})
}

func ChatReset(pairKey string, resetBy string, resetAt int64) error {
	return publish(chat_reset, Topic(TopicConversation, pairKey), resetBy, chat_reset_data{
		ResetBy: resetBy,
		ResetAt: resetAt,
	})
}

func Typing(pairKey string, userID string, isTyping bool) error {
	return publish(typing, Topic(TopicConversation, pairKey), userID, typing_data{
		UserID: userID,
		Typing: isTyping,
	})
}

func PresenceChanged(userID string, online bool) error {
	return publish(presence_changed, Topic(TopicPresence, userID), userID, presence_changed_data{
		UserID: userID,
		Online: online,
	})
}

func BlockChanged(pairKey string, blockerID string, blockedID string, blocked bool) error {
	return publish(block_changed, Topic(TopicBlocks, pairKey), blockerID, block_changed_data{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Blocked:   blocked,
	})
}

// Exchange events land in the counterparty's inbox topic.

func ExchangeRequested(targetID string, data ExchangeEvent) error {
	return publish(exchange_requested, Topic(TopicInbox, targetID), data.RequesterID, exchange_event_data(data))
}

func ExchangeAccepted(targetID string, originID string, data ExchangeEvent) error {
	return publish(exchange_accepted, Topic(TopicInbox, targetID), originID, exchange_event_data(data))
}

func ExchangeDeclined(targetID string, originID string, data ExchangeEvent) error {
	return publish(exchange_declined, Topic(TopicInbox, targetID), originID, exchange_event_data(data))
}

func ExchangeCancelled(targetID string, originID string, data ExchangeEvent) error {
	return publish(exchange_cancelled, Topic(TopicInbox, targetID), originID, exchange_event_data(data))
}

func ExchangeCompleted(targetID string, data ExchangeEvent) error {
	return publish(exchange_completed, Topic(TopicInbox, targetID), "", exchange_event_data(data))
}

// ExchangeEvent mirrors the wire payload for exchange lifecycle events
type ExchangeEvent struct {
	ExchangeID  string
	ListingID   string
	RequesterID string
	ProviderID  string
	Status      string
}

func ProgressRequested(targetID string, data ProgressEvent) error {
	return publish(progress_requested, Topic(TopicInbox, targetID), data.MentorID, progress_event_data(data))
}

func ProgressConfirmed(targetID string, data ProgressEvent) error {
	return publish(progress_confirmed, Topic(TopicInbox, targetID), data.MenteeID, progress_event_data(data))
}

type ProgressEvent struct {
	RequestID   string
	ExchangeID  string
	MentorID    string
	MenteeID    string
	NextSession int
	Total       int
	Status      string
}

func SessionScheduled(targetID string, sessionID string, exchangeID string, link string, scheduledAt int64) error {
	return publish(session_scheduled, Topic(TopicInbox, targetID), "", session_event_data{
		SessionID:   sessionID,
		ExchangeID:  exchangeID,
		Link:        link,
		ScheduledAt: scheduledAt,
	})
}

func SessionReminder(targetID string, sessionID string, exchangeID string, link string, scheduledAt int64) error {
	return publish(session_reminder, Topic(TopicInbox, targetID), "", session_event_data{
		SessionID:   sessionID,
		ExchangeID:  exchangeID,
		Link:        link,
		ScheduledAt: scheduledAt,
	})
}

func UnreadChanged(userID string, total int64) error {
	return publish(unread_changed, Topic(TopicInbox, userID), "", unread_changed_data{
		Total: total,
	})
}
