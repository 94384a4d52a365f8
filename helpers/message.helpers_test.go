package helpers

import (
	"testing"
	"time"

	"skillswap_server/schemas"
)

func TestFilterByWatermark(t *testing.T) {

	history := []schemas.MessageSchema{
		{MessageID: "m1", Created: 100},
		{MessageID: "m2", Created: 200},
		{MessageID: "m3", Created: 300},
	}

	t.Run("no watermark keeps everything", func(t *testing.T) {
		got := FilterByWatermark(append([]schemas.MessageSchema{}, history...), 0)
		if len(got) != 3 {
			t.Fatalf("got %d messages, want 3", len(got))
		}
	})

	t.Run("drops at and before watermark", func(t *testing.T) {
		got := FilterByWatermark(append([]schemas.MessageSchema{}, history...), 200)
		if len(got) != 1 || got[0].MessageID != "m3" {
			t.Fatalf("got %+v, want only m3", got)
		}
	})

	t.Run("watermark past everything empties history", func(t *testing.T) {
		got := FilterByWatermark(append([]schemas.MessageSchema{}, history...), 300)
		if len(got) != 0 {
			t.Fatalf("got %d messages, want 0", len(got))
		}
	})
}

func TestBlockedEitherWay(t *testing.T) {

	outgoing := map[string]bool{"bob": true}

	t.Run("outgoing hit skips the reverse lookup", func(t *testing.T) {
		blocked, err := BlockedEitherWay(outgoing, "bob", func(string) (bool, error) {
			t.Fatal("reverse lookup ran on an outgoing hit")
			return false, nil
		})
		if err != nil || !blocked {
			t.Fatalf("got (%v,%v), want blocked", blocked, err)
		}
	})

	t.Run("miss falls back to the reverse direction", func(t *testing.T) {
		calls := 0
		blocked, err := BlockedEitherWay(outgoing, "carol", func(id string) (bool, error) {
			calls++
			return id == "carol", nil
		})
		if err != nil || !blocked || calls != 1 {
			t.Fatalf("got (%v,%v) after %d calls, want one reverse lookup reporting blocked", blocked, err, calls)
		}
	})

	t.Run("unblocked pair stays visible", func(t *testing.T) {
		blocked, err := BlockedEitherWay(outgoing, "dave", func(string) (bool, error) {
			return false, nil
		})
		if err != nil || blocked {
			t.Fatalf("got (%v,%v), want not blocked", blocked, err)
		}
	})
}

func TestUnreadFlipTime(t *testing.T) {

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	row := func(receiver string, read bool, created interface{}) map[string]interface{} {
		return map[string]interface{}{
			"receiver_id": receiver,
			"read":        read,
			"created":     created,
		}
	}

	t.Run("every unread incoming row qualifies regardless of depth", func(t *testing.T) {
		flipped := 0
		for i := 0; i < 60; i++ {
			created, flip := UnreadFlipTime(row("alice", false, base.Add(time.Duration(i)*time.Minute)), "alice")
			if !flip {
				t.Fatalf("row %d not selected", i)
			}
			if !created.Equal(base.Add(time.Duration(i) * time.Minute)) {
				t.Fatalf("row %d returned wrong timestamp %v", i, created)
			}
			flipped++
		}
		if flipped != 60 {
			t.Fatalf("flipped %d rows, want 60", flipped)
		}
	})

	t.Run("already read rows are skipped", func(t *testing.T) {
		if _, flip := UnreadFlipTime(row("alice", true, base), "alice"); flip {
			t.Fatal("read row selected")
		}
	})

	t.Run("rows addressed to the peer are skipped", func(t *testing.T) {
		if _, flip := UnreadFlipTime(row("bob", false, base), "alice"); flip {
			t.Fatal("outgoing row selected")
		}
	})

	t.Run("rows without a timestamp are skipped", func(t *testing.T) {
		if _, flip := UnreadFlipTime(row("alice", false, nil), "alice"); flip {
			t.Fatal("timestampless row selected")
		}
	})
}
