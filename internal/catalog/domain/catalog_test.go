package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestCountryValidate(t *testing.T) {
	if err := (Country{Name: "Wales"}).Validate(); err != nil {
		t.Fatalf("valid country rejected: %v", err)
	}
	if err := (Country{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyCountryName) {
		t.Fatalf("err = %v, want ErrEmptyCountryName", err)
	}
}

func TestLocationValidate(t *testing.T) {
	if err := (Location{City: "Cardiff", CountryID: 1}).Validate(); err != nil {
		t.Fatalf("valid location rejected: %v", err)
	}
	if err := (Location{CountryID: 1}).Validate(); err == nil {
		t.Fatal("empty city accepted")
	}
	if err := (Location{City: "Cardiff"}).Validate(); err == nil {
		t.Fatal("missing country reference accepted")
	}
}

func TestBotanistValidateRequiresNameOrEmail(t *testing.T) {
	if err := (Botanist{Name: "Carl"}).Validate(); err != nil {
		t.Fatalf("name-only botanist rejected: %v", err)
	}
	if err := (Botanist{Email: "carl@example.org"}).Validate(); err != nil {
		t.Fatalf("email-only botanist rejected: %v", err)
	}
	if err := (Botanist{Phone: "029 2087 4000"}).Validate(); !errors.Is(err, ErrEmptyBotanistKey) {
		t.Fatalf("err = %v, want ErrEmptyBotanistKey", err)
	}
}

func TestBotanistNormalizePhoneTruncates(t *testing.T) {
	b := Botanist{Name: "Carl", Phone: strings.Repeat("9", 30)}
	b.NormalizePhone()
	if len(b.Phone) != 20 {
		t.Fatalf("phone length = %d, want 20", len(b.Phone))
	}

	short := Botanist{Name: "Carl", Phone: "029 2087 4000"}
	short.NormalizePhone()
	if short.Phone != "029 2087 4000" {
		t.Fatalf("short phone changed: %q", short.Phone)
	}
}
