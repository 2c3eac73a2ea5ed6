package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"one on one", ModeOneOnOne},
		{"One-On-One", ModeOneOnOne},
		{"in_group", ModeInGroup},
		{"Video Call", ModeVideoCall},
		{"skype", ModeVideoCall},
		{"phone", ModePhoneCall},
		{"  EMAIL ", ModeEmail},
		{"text", ModeText},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseMode("carrier pigeon"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCheckReciprocity(t *testing.T) {
	for _, m := range Modes {
		c := &Conversation{Mode: m, Seed: true}
		err := c.CheckReciprocity()
		if m.IsLive() && !errors.Is(err, ErrLiveSeed) {
			t.Errorf("seed with %q: err = %v, want ErrLiveSeed", m, err)
		}
		if !m.IsLive() && err != nil {
			t.Errorf("seed with %q: unexpected error %v", m, err)
		}

		c.Seed = false
		if err := c.CheckReciprocity(); err != nil {
			t.Errorf("non-seed with %q: unexpected error %v", m, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	bob := &Person{FirstName: "Bob", LastName: "Smith"}
	acme := &Company{Name: "Acme"}

	tests := []struct {
		name string
		p    *Person
		want string
	}{
		{"full", &Person{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{"partner", &Person{FirstName: "Jane", Partner: bob, Company: acme}, "Jane (Bob Smith)"},
		{"known via", &Person{FirstName: "Jane", KnownVia: bob}, "Jane (via Bob Smith)"},
		{"company", &Person{FirstName: "Jane", Company: acme}, "Jane (Acme)"},
		{"unknown", &Person{FirstName: "Jane"}, "Jane (?)"},
	}
	for _, tt := range tests {
		if got := tt.p.DisplayName(); got != tt.want {
			t.Errorf("%s: DisplayName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDisplayNameMutualPartnersWithoutLastName(t *testing.T) {
	a := &Person{FirstName: "Ann"}
	b := &Person{FirstName: "Ben"}
	a.Partner, b.Partner = b, a

	if got := a.DisplayName(); got != "Ann (Ben)" {
		t.Errorf("DisplayName() = %q, want %q", got, "Ann (Ben)")
	}
}

func TestNewPublicID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPublicID()
		if len(id) != PublicIDLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), PublicIDLength)
		}
		if seen[id] {
			t.Fatalf("duplicate public id %q", id)
		}
		seen[id] = true
	}
}

func TestCivilDate(t *testing.T) {
	chicago := time.FixedZone("CST", -6*3600)
	late := time.Date(2026, 3, 9, 23, 30, 0, 0, chicago)

	got := CivilDate(late)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CivilDate = %v, want %v", got, want)
	}
}
