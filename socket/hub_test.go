package socket

import "testing"

func TestSubscribeDispatch(t *testing.T) {

	send := make(chan []byte, 1)
	sub, err := Subscribe("conversation/a:b", send)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	Dispatch("conversation/a:b", []byte("hello"))

	select {
	case got := <-send:
		if string(got) != "hello" {
			t.Fatalf("got %q", got)
		}
	default:
		t.Fatal("payload not delivered")
	}
}

func TestDispatchSkipsFullBuffers(t *testing.T) {

	send := make(chan []byte, 1)
	sub, err := Subscribe("conversation/c:d", send)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	Dispatch("conversation/c:d", []byte("one"))
	Dispatch("conversation/c:d", []byte("two"))

	if got := <-send; string(got) != "one" {
		t.Fatalf("got %q, want one", got)
	}
	select {
	case extra := <-send:
		t.Fatalf("unexpected second payload %q", extra)
	default:
	}
}

func TestCancelExactlyOnce(t *testing.T) {

	send := make(chan []byte, 1)
	sub, err := Subscribe("inbox/u1", send)
	if err != nil {
		t.Fatal(err)
	}

	if n := SubscriberCount("inbox/u1"); n != 1 {
		t.Fatalf("subscriber count %d, want 1", n)
	}

	sub.Cancel()
	sub.Cancel()

	if n := SubscriberCount("inbox/u1"); n != 0 {
		t.Fatalf("subscriber count %d after cancel, want 0", n)
	}

	Dispatch("inbox/u1", []byte("late"))
	select {
	case <-send:
		t.Fatal("cancelled subscription received payload")
	default:
	}
}

func TestCancelLeavesOtherSubscribers(t *testing.T) {

	sendA := make(chan []byte, 1)
	sendB := make(chan []byte, 1)

	subA, err := Subscribe("presence/u2", sendA)
	if err != nil {
		t.Fatal(err)
	}
	subB, err := Subscribe("presence/u2", sendB)
	if err != nil {
		t.Fatal(err)
	}
	defer subB.Cancel()

	subA.Cancel()

	Dispatch("presence/u2", []byte("online"))

	select {
	case <-sendB:
	default:
		t.Fatal("surviving subscriber missed payload")
	}
}

func TestPairMember(t *testing.T) {
	if !pairMember("u1", "u1:u2") || !pairMember("u2", "u1:u2") {
		t.Fatal("participant not recognized")
	}
	if pairMember("u3", "u1:u2") {
		t.Fatal("outsider recognized")
	}
	if pairMember("u1", "u1") {
		t.Fatal("malformed key accepted")
	}
}

func TestTopicAllowed(t *testing.T) {

	tests := []struct {
		name string
		kind string
		key  string
		want bool
	}{
		{"own inbox", "inbox", "u1", true},
		{"foreign inbox", "inbox", "u2", false},
		{"own conversation", "conversation", "u1:u2", true},
		{"foreign conversation", "conversation", "u2:u3", false},
		{"any presence", "presence", "u9", true},
		{"own block topic", "blocks", "u1:u2", true},
		{"unknown kind", "mystery", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topicAllowed("u1", tt.kind, tt.key); got != tt.want {
				t.Fatalf("topicAllowed(u1,%s,%s) = %v, want %v", tt.kind, tt.key, got, tt.want)
			}
		})
	}
}
