package validate_test

import (
	"strings"
	"testing"

	"vapordepot/internal/validate"
)

func TestEmail(t *testing.T) {
	for _, good := range []string{"pat@example.com", " pat@example.com ", "a.b+c@sub.example.co"} {
		if _, ok := validate.Email(good); !ok {
			t.Errorf("Email(%q) rejected", good)
		}
	}
	for _, bad := range []string{"", "nope", "a@b", "a b@example.com", strings.Repeat("x", 95) + "@example.com"} {
		if _, ok := validate.Email(bad); ok {
			t.Errorf("Email(%q) accepted", bad)
		}
	}
}

func TestQ(t *testing.T) {
	if s, ok := validate.Q("  elf bar  "); !ok || s != "elf bar" {
		t.Fatalf("Q trim: %q %v", s, ok)
	}
	if _, ok := validate.Q(""); !ok {
		t.Fatal("empty query is valid")
	}
	if _, ok := validate.Q("<script>"); ok {
		t.Fatal("markup accepted")
	}
	if s, _ := validate.Q(strings.Repeat("a", 80)); len(s) != 50 {
		t.Fatalf("long query not truncated: %d", len(s))
	}
}

func TestID(t *testing.T) {
	if _, ok := validate.ID("V1_abc-XYZ"); !ok {
		t.Fatal("plain id rejected")
	}
	for _, bad := range []string{"", "has space", "semi;colon", strings.Repeat("a", 65)} {
		if _, ok := validate.ID(bad); ok {
			t.Errorf("ID(%q) accepted", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	for _, good := range []string{"Str0ngPass", "aB3defgh"} {
		if !validate.Password(good) {
			t.Errorf("Password(%q) rejected", good)
		}
	}
	for _, bad := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere", strings.Repeat("aB1", 30)} {
		if validate.Password(bad) {
			t.Errorf("Password(%q) accepted", bad)
		}
	}
}
