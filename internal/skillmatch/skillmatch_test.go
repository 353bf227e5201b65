package skillmatch

import "testing"

func TestMatchFindsKeyword(t *testing.T) {
	m := Default()
	skill, ok := m.Match("what's the weather like tomorrow?")
	if !ok {
		t.Fatalf("expected a match")
	}
	if skill.Name != "weather" {
		t.Fatalf("expected weather skill, got %s", skill.Name)
	}
}

func TestMatchNoneFound(t *testing.T) {
	m := Default()
	if _, ok := m.Match("tell me a joke"); ok {
		t.Fatalf("expected no match")
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := Default()
	if _, ok := m.Match("REMIND ME to call mom"); !ok {
		t.Fatalf("expected case-insensitive match")
	}
}
