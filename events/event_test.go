package events

import "testing"

func TestTopic(t *testing.T) {
	if got := Topic(TopicConversation, "a:b"); got != "conversation/a:b" {
		t.Fatalf("got %q", got)
	}
	if got := Topic(TopicInbox, "u1"); got != "inbox/u1" {
		t.Fatalf("got %q", got)
	}
}
