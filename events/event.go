package events

import (
	"time"

	"skillswap_server/global"

	"github.com/aidarkhanov/nanoid/v2"
	jsoniter "github.com/json-iterator/go"
)

const VALID_NANOID_CHAR = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

type op_type int

type envelope struct {
	Op        op_type
	Topic     string
	OriginID  string
	Timestamp int64
	Signature string
	Data      interface{}
}

// Topic kinds; a topic is "<kind>/<key>"
const (
	TopicConversation = "conversation"
	TopicPresence     = "presence"
	TopicInbox        = "inbox"
	TopicBlocks       = "blocks"
)

// Topic joins a kind and key into a subscription topic
func Topic(kind string, key string) string {
	return kind + "/" + key
}

// dispatch delivers published envelopes to the local process; wired to the
// hub at startup so this package never imports it.
var dispatch func(topic string, payload []byte)

// SetDispatcher installs the local delivery function
func SetDispatcher(fn func(topic string, payload []byte)) {
	dispatch = fn
}

func publish(op op_type, topic string, originID string, data interface{}) error {

	signature, err := nanoid.GenerateString(VALID_NANOID_CHAR, 4)
	if err != nil {
		return err
	}

	b, err := jsoniter.Marshal(envelope{
		Op:        op,
		Topic:     topic,
		OriginID:  originID,
		Timestamp: time.Now().UnixMilli(),
		Signature: signature,
		Data:      data,
	})
	if err != nil {
		return err
	}

	return global.RedisClient.Publish(global.Context, global.EventChannel, b).Err()
}

// Bridge pumps the redis event channel into the local dispatcher until the
// context is cancelled. Every process runs one bridge, so events published by
// any handler reach every hub.
func Bridge() {

	sub := global.RedisClient.Subscribe(global.Context, global.EventChannel)

	go func() {
		for msg := range sub.Channel() {
			payload := []byte(msg.Payload)
			topic := jsoniter.Get(payload, "Topic").ToString()
			if topic == "" || dispatch == nil {
				continue
			}
			dispatch(topic, payload)
		}
	}()
}
