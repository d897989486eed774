package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wfunc/drawguess/models"
)

func writeWordFile(t *testing.T, dir, name string, lines string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(lines), 0o644); err != nil {
		t.Fatalf("Failed to write word file: %v", err)
	}
}

func newTestSource(t *testing.T) *Source {
	t.Helper()
	dir := t.TempDir()
	writeWordFile(t, dir, "en.txt", "apple\nbanana\ncherry\ndragon\neagle\n")
	writeWordFile(t, dir, "am.txt", "ስዕል\nቤት\nውሃ\n")
	return NewSource(dir)
}

func TestRandomWords_DistinctPicks(t *testing.T) {
	s := newTestSource(t)

	words, err := s.RandomWords(3, models.LanguageEnglish, false, nil)
	if err != nil {
		t.Fatalf("RandomWords failed: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("Expected 3 words, got %d", len(words))
	}
	seen := map[string]bool{}
	for _, w := range words {
		if seen[w] {
			t.Errorf("Duplicate word in picks: %s", w)
		}
		seen[w] = true
	}
}

func TestRandomWords_OnlyCustomWords(t *testing.T) {
	s := newTestSource(t)

	custom := []string{"cat", "dog", "fish"}
	words, err := s.RandomWords(3, models.LanguageEnglish, true, custom)
	if err != nil {
		t.Fatalf("RandomWords failed: %v", err)
	}
	allowed := map[string]bool{"cat": true, "dog": true, "fish": true}
	for _, w := range words {
		if !allowed[w] {
			t.Errorf("Exclusive custom mode returned built-in word %q", w)
		}
	}
}

func TestRandomWords_NotEnoughCustomWords(t *testing.T) {
	s := newTestSource(t)

	if _, err := s.RandomWords(3, models.LanguageEnglish, true, []string{"cat"}); err == nil {
		t.Fatal("Expected an error with fewer custom words than requested")
	}
}

func TestRandomWords_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	s := newTestSource(t)

	words, err := s.RandomWords(2, models.Language("Klingon"), false, nil)
	if err != nil {
		t.Fatalf("RandomWords failed: %v", err)
	}
	if len(words) != 2 {
		t.Errorf("Expected 2 words, got %d", len(words))
	}
}

func TestRandomWords_AmharicFile(t *testing.T) {
	s := newTestSource(t)

	words, err := s.RandomWords(2, models.LanguageAmharic, false, nil)
	if err != nil {
		t.Fatalf("RandomWords failed: %v", err)
	}
	if len(words) != 2 {
		t.Errorf("Expected 2 words, got %d", len(words))
	}
}

func TestRandomWords_MissingFile(t *testing.T) {
	s := NewSource(t.TempDir())

	if _, err := s.RandomWords(3, models.LanguageEnglish, false, nil); err == nil {
		t.Fatal("Expected an error when the word file is missing")
	}
}
