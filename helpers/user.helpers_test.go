package helpers

import (
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {

	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{50, 1},
		{999, 1},
		{1000, 2},
		{2500, 3},
		{-10, 1},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestNextStreak(t *testing.T) {

	day := func(s string) time.Time {
		t.Helper()
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return parsed
	}

	t.Run("same day keeps streak", func(t *testing.T) {
		if got := NextStreak(day("2026-08-28"), day("2026-08-28"), 4); got != 4 {
			t.Fatalf("got %d, want 4", got)
		}
	})

	t.Run("next day extends streak", func(t *testing.T) {
		if got := NextStreak(day("2026-08-28"), day("2026-08-29"), 4); got != 5 {
			t.Fatalf("got %d, want 5", got)
		}
	})

	t.Run("gap resets streak", func(t *testing.T) {
		if got := NextStreak(day("2026-08-25"), day("2026-08-29"), 4); got != 1 {
			t.Fatalf("got %d, want 1", got)
		}
	})

	t.Run("zero streak starts at one", func(t *testing.T) {
		if got := NextStreak(time.Time{}, day("2026-08-29"), 0); got != 1 {
			t.Fatalf("got %d, want 1", got)
		}
	})
}

func TestValidateAge(t *testing.T) {

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("old enough", func(t *testing.T) {
		if _, ok := ValidateAge("2010-01-01", now); !ok {
			t.Fatal("adult rejected")
		}
	})

	t.Run("exactly minimum age", func(t *testing.T) {
		if _, ok := ValidateAge("2013-08-29", now); !ok {
			t.Fatal("thirteenth birthday rejected")
		}
	})

	t.Run("too young", func(t *testing.T) {
		if _, ok := ValidateAge("2015-01-01", now); ok {
			t.Fatal("minor accepted")
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		if _, ok := ValidateAge("01/01/2000", now); ok {
			t.Fatal("malformed date accepted")
		}
	})
}

func TestUsernameCandidate(t *testing.T) {
	if got := UsernameCandidate("sam", 0); got != "sam" {
		t.Fatalf("got %q, want sam", got)
	}
	if got := UsernameCandidate("sam", 1); got != "sam1" {
		t.Fatalf("got %q, want sam1", got)
	}
	if got := UsernameCandidate("sam", 12); got != "sam12" {
		t.Fatalf("got %q, want sam12", got)
	}
}

func TestValidUsername(t *testing.T) {
	for _, valid := range []string{"sam", "Sam_99", "a"} {
		if !ValidUsername.MatchString(valid) {
			t.Fatalf("%q rejected", valid)
		}
	}
	for _, invalid := range []string{"", "sam!", "two words", "ünï"} {
		if ValidUsername.MatchString(invalid) {
			t.Fatalf("%q accepted", invalid)
		}
	}
}
