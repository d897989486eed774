package words

import (
	"testing"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		word  string
		guess string
		want  bool
	}{
		{"apple", "apple", true},
		{"apple", "APPLE", true},
		{"apple", "  apple ", true},
		{"ice cream", "ice   cream", true},
		{"apple", "appel", false},
		{"apple", "", false},
		{"ስዕል", "ስዕል", true},
	}
	for _, tc := range cases {
		if got := Matches(tc.word, tc.guess); got != tc.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.word, tc.guess, got, tc.want)
		}
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		phrase string
		want   []int
	}{
		{"apple", []int{5}},
		{"ice cream", []int{3, 5}},
		{"  spaced  out ", []int{6, 3}},
		{"", nil},
	}
	for _, tc := range cases {
		got := Mask(tc.phrase)
		if len(got) != len(tc.want) {
			t.Errorf("Mask(%q) = %v, want %v", tc.phrase, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Mask(%q) = %v, want %v", tc.phrase, got, tc.want)
				break
			}
		}
	}
}

func TestMask_CountsGraphemesNotBytes(t *testing.T) {
	// Amharic script: each syllable is one user-perceived character.
	got := Mask("ስዕል")
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("Expected [3] for a 3-syllable word, got %v", got)
	}
}

func TestGraphemes(t *testing.T) {
	got := Graphemes("héllo")
	if len(got) != 5 {
		t.Errorf("Expected 5 graphemes, got %d: %v", len(got), got)
	}
}
