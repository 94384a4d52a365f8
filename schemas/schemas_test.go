package schemas

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func TestRegisterSchemaValidation(t *testing.T) {

	valid := RegisterSchema{
		Username:    "sam",
		Email:       "sam@example.com",
		Password:    "longenough",
		DateOfBirth: "2000-01-01",
	}
	if err := validate.Struct(valid); err != nil {
		t.Fatalf("valid register rejected: %v", err)
	}

	t.Run("short password", func(t *testing.T) {
		req := valid
		req.Password = "short"
		if err := validate.Struct(req); err == nil {
			t.Fatal("short password accepted")
		}
	})

	t.Run("bad email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		if err := validate.Struct(req); err == nil {
			t.Fatal("bad email accepted")
		}
	})

	t.Run("missing username", func(t *testing.T) {
		req := valid
		req.Username = ""
		if err := validate.Struct(req); err == nil {
			t.Fatal("missing username accepted")
		}
	})
}

func TestVerifyEmailSchemaValidation(t *testing.T) {

	valid := VerifyEmailSchema{Email: "sam@example.com", Code: "A1B2C3"}
	if err := validate.Struct(valid); err != nil {
		t.Fatalf("valid verify rejected: %v", err)
	}

	invalid := valid
	invalid.Code = "A1B2"
	if err := validate.Struct(invalid); err == nil {
		t.Fatal("short code accepted")
	}
}

func TestUpdateListingSchemaValidation(t *testing.T) {

	for _, status := range []string{"active", "inactive"} {
		if err := validate.Struct(UpdateListingSchema{Status: status}); err != nil {
			t.Fatalf("status %q rejected: %v", status, err)
		}
	}

	if err := validate.Struct(UpdateListingSchema{Status: "archived"}); err == nil {
		t.Fatal("unknown status accepted")
	}
}

func TestSendMessageSchemaValidation(t *testing.T) {

	if err := validate.Struct(SendMessageSchema{Content: "hi"}); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if err := validate.Struct(SendMessageSchema{}); err == nil {
		t.Fatal("empty message accepted")
	}

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	if err := validate.Struct(SendMessageSchema{Content: string(long)}); err == nil {
		t.Fatal("oversized message accepted")
	}
}
