package socket

import (
	"sync"
	"time"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

const CONCURRENCY = 32
const VALID_NANOID_CHAR = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const MAX_WS_CONNECTION_TIME = 1 * time.Hour
const SEND_BUFFER = 8

type subscriber_set map[string]chan []byte

type conc_topic_table struct {
	table map[string]subscriber_set
	sync.RWMutex
}
type conc_topic_table_shards []*conc_topic_table

func (ct conc_topic_table_shards) get_shard(topic string) *conc_topic_table {
	return ct[fnv1a.HashString32(topic)%CONCURRENCY]
}

var topic_sub_table conc_topic_table_shards = func() conc_topic_table_shards {
	shards := make([]*conc_topic_table, CONCURRENCY)

	for i := 0; uint32(i) < CONCURRENCY; i++ {
		shards[i] = &conc_topic_table{table: make(map[string]subscriber_set)}
	}

	return shards
}()

// Subscription ties one connection to one topic. Cancel detaches it exactly
// once; later calls are no-ops.
type Subscription struct {
	ID    string
	Topic string

	send chan []byte
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		shard := topic_sub_table.get_shard(s.Topic)

		shard.Lock()

		subs := shard.table[s.Topic]
		delete(subs, s.ID)
		if len(subs) == 0 {
			delete(shard.table, s.Topic)
		}

		shard.Unlock()
	})
}

// Subscribe registers send on a topic and returns the handle used to detach
func Subscribe(topic string, send chan []byte) (*Subscription, error) {

	subID, err := nanoid.GenerateString(VALID_NANOID_CHAR, 10)
	if err != nil {
		return nil, err
	}

	shard := topic_sub_table.get_shard(topic)

	shard.Lock()

	subs, exists := shard.table[topic]
	if !exists {
		subs = make(subscriber_set)
		shard.table[topic] = subs
	}

	for {
		if _, taken := subs[subID]; !taken {
			break
		}
		subID, err = nanoid.GenerateString(VALID_NANOID_CHAR, 10)
		if err != nil {
			shard.Unlock()
			return nil, err
		}
	}

	subs[subID] = send

	shard.Unlock()

	return &Subscription{ID: subID, Topic: topic, send: send}, nil
}

// Dispatch fans a payload out to every subscriber on the topic. Slow
// consumers are skipped rather than blocking the event pump.
func Dispatch(topic string, payload []byte) {

	shard := topic_sub_table.get_shard(topic)

	shard.RLock()

	for _, send := range shard.table[topic] {
		select {
		case send <- payload:
		default:
		}
	}

	shard.RUnlock()
}

// SubscriberCount reports how many connections are attached to a topic
func SubscriberCount(topic string) int {

	shard := topic_sub_table.get_shard(topic)

	shard.RLock()
	n := len(shard.table[topic])
	shard.RUnlock()

	return n
}
