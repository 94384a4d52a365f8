package helpers

import "testing"

func TestPairKey(t *testing.T) {

	t.Run("orders ids canonically", func(t *testing.T) {
		a := PairKey("user-b", "user-a")
		b := PairKey("user-a", "user-b")
		if a != b {
			t.Fatalf("pair key not canonical: %q vs %q", a, b)
		}
		if a != "user-a:user-b" {
			t.Fatalf("unexpected pair key: %q", a)
		}
	})

	t.Run("same id both sides", func(t *testing.T) {
		if got := PairKey("x", "x"); got != "x:x" {
			t.Fatalf("unexpected pair key: %q", got)
		}
	})
}
