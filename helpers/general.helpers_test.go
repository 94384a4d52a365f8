package helpers

import "testing"

func TestNormalizeLink(t *testing.T) {

	tests := []struct {
		in   string
		want string
	}{
		{"meet.example.com/abc", "https://meet.example.com/abc"},
		{"https://meet.example.com/abc", "https://meet.example.com/abc"},
		{"http://meet.example.com/abc", "http://meet.example.com/abc"},
		{"zoom.us/j/123", "https://zoom.us/j/123"},
	}

	for _, tt := range tests {
		if got := NormalizeLink(tt.in); got != tt.want {
			t.Fatalf("NormalizeLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRandomTokenString(t *testing.T) {

	token, err := RandomTokenString(20)
	if err != nil {
		t.Fatal(err)
	}
	if len(token) != 40 {
		t.Fatalf("token length %d, want 40", len(token))
	}

	other, err := RandomTokenString(20)
	if err != nil {
		t.Fatal(err)
	}
	if token == other {
		t.Fatal("two tokens collided")
	}
}

func TestMilisecondsToTime(t *testing.T) {
	milli := int64(1756400000000)
	if got := MilisecondsToTime(milli).UnixMilli(); got != milli {
		t.Fatalf("roundtrip %d != %d", got, milli)
	}
}
