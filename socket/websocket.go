package socket

import (
	Errors "errors"
	"fmt"
	"strings"
	"time"

	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/metrics"

	"github.com/gofiber/websocket/v2"
)

const presence_ttl = 200 * time.Second

// Stream starts and maintains a websocket connection. The client speaks a
// pipe-delimited text protocol:
//
//	PING
//	sub|<kind>|<key>
//	unsub|<kind>|<key>
//	typing|<pairKey>|<0|1>
func Stream(ws *websocket.Conn) {

	var version = 0
	defer ws.Close()

	metrics.StreamConnections.Inc()
	defer metrics.StreamConnections.Dec()

	userID := ws.Locals("userid").(string)

	send := make(chan []byte, SEND_BUFFER)
	done := make(chan bool)
	subscriptions := make(map[string]*Subscription)

	defer func() {
		close(done)
		for _, sub := range subscriptions {
			sub.Cancel()
		}
		global.RedisClient.Del(global.Context, "presence:"+userID)
		events.PresenceChanged(userID, false)
	}()

	go func() {
		for {
			select {
			case payload := <-send:
				if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
					errors.HandleWebsocketError(ws, "websocket_write", err.Error())
					return
				}
			case <-done:
				return
			}
		}
	}()

	// inbox events always reach the owning connection
	inboxSub, err := Subscribe(events.Topic(events.TopicInbox, userID), send)
	if err != nil {
		errors.HandleWebsocketError(ws, "websocket_inbox_sub", err.Error())
		return
	}
	subscriptions[inboxSub.Topic] = inboxSub

	if err = global.RedisClient.Set(global.Context, "presence:"+userID, "1", presence_ttl).Err(); err != nil {
		errors.HandleBasicError(err)
	}
	events.PresenceChanged(userID, true)

	var (
		mt       int
		msg      []byte
		req      string
		reqChunk []string
	)
	for {
		if err = ws.SetReadDeadline(time.Now().Add(time.Second * 190)); err != nil {
			errors.HandleWebsocketError(ws, "websocket_read_deadline", err.Error())
			break
		}
		if mt, msg, err = ws.ReadMessage(); err != nil {
			if err != websocket.ErrCloseSent && !websocket.IsCloseError(err, 1000) && !strings.Contains(err.Error(), "i/o timeout") && !strings.Contains(err.Error(), "An existing connection was forcibly closed by the remote host") {
				errors.HandleWebsocketError(ws, "websocket_read", err.Error())
			}
			break
		}
		if mt == websocket.BinaryMessage {
			errors.HandleWebsocketError(ws, "websocket_read", "binary message")
			break
		}

		req = string(msg)

		if req == "PING" {
			global.RedisClient.Expire(global.Context, "presence:"+userID, presence_ttl)
			if err = ws.WriteMessage(websocket.TextMessage, []byte("PONG"+fmt.Sprint(version))); err != nil {
				errors.HandleWebsocketError(ws, "websocket_write_PONG", err.Error())
				break
			}
			if version < 999 {
				version++
			} else {
				version = 0
			}
			continue
		}

		reqChunk = strings.Split(req, "|")

		switch reqChunk[0] {
		case "sub":
			if len(reqChunk) != 3 {
				err = Errors.New("malformed sub")
				break
			}
			topic := events.Topic(reqChunk[1], reqChunk[2])
			if _, exists := subscriptions[topic]; exists {
				continue
			}
			if !topicAllowed(userID, reqChunk[1], reqChunk[2]) {
				err = Errors.New("topic not allowed")
				break
			}
			var sub *Subscription
			sub, err = Subscribe(topic, send)
			if err != nil {
				break
			}
			subscriptions[topic] = sub
		case "unsub":
			if len(reqChunk) != 3 {
				err = Errors.New("malformed unsub")
				break
			}
			topic := events.Topic(reqChunk[1], reqChunk[2])
			if sub, exists := subscriptions[topic]; exists {
				sub.Cancel()
				delete(subscriptions, topic)
			}
		case "typing":
			if len(reqChunk) != 3 || !pairMember(userID, reqChunk[1]) {
				err = Errors.New("malformed typing")
				break
			}
			err = events.Typing(reqChunk[1], userID, reqChunk[2] == "1")
		default:
			err = Errors.New("type error")
		}

		if err != nil {
			errors.HandleWebsocketError(ws, "websocket_type", err.Error())
			break
		}
	}
}

// topicAllowed limits subscriptions to topics the user may observe
func topicAllowed(userID string, kind string, key string) bool {
	switch kind {
	case events.TopicInbox:
		return key == userID
	case events.TopicConversation, events.TopicBlocks:
		return pairMember(userID, key)
	case events.TopicPresence:
		return true
	}
	return false
}

func pairMember(userID string, pairKey string) bool {
	parts := strings.Split(pairKey, ":")
	return len(parts) == 2 && (parts[0] == userID || parts[1] == userID)
}

// Online reports whether the user currently has a live presence key
func Online(userID string) bool {
	n, err := global.RedisClient.Exists(global.Context, "presence:"+userID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
