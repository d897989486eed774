// words/source.go
package words

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wfunc/drawguess/models"
)

// How heavily custom words are mixed into the built-in list.
const customWordsWeight = 3

var languageFileNames = map[models.Language]string{
	models.LanguageEnglish: "en",
	models.LanguageAmharic: "am",
}

// Source serves random words from per-language word files. Files are loaded
// once and cached for the process lifetime.
type Source struct {
	dir   string
	mutex sync.Mutex
	cache map[models.Language][]string
}

func NewSource(dir string) *Source {
	return &Source{
		dir:   dir,
		cache: make(map[models.Language][]string),
	}
}

func (s *Source) load(language models.Language) ([]string, error) {
	lang := models.ResolveLanguage(language)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cached, ok := s.cache[lang]; ok {
		return cached, nil
	}

	fileName := languageFileNames[lang]
	data, err := os.ReadFile(filepath.Join(s.dir, fileName+".txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load words for %s: %w", lang, err)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	var loaded []string
	for _, line := range strings.Split(text, "\n") {
		if w := NormalizeForCompare(line); w != "" {
			loaded = append(loaded, w)
		}
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no words found for %s", lang)
	}

	s.cache[lang] = loaded
	return loaded, nil
}

// RandomWords returns n distinct picks from the language's word pool.
// Custom words are weighted into the pool, or used exclusively when
// onlyCustomWords is set. Fails when the pool holds fewer than n words.
func (s *Source) RandomWords(n int, language models.Language, onlyCustomWords bool, customWords []string) ([]string, error) {
	var normalizedCustom []string
	for _, w := range customWords {
		if nw := NormalizeForCompare(w); nw != "" {
			normalizedCustom = append(normalizedCustom, nw)
		}
	}

	var pool []string
	if onlyCustomWords {
		if len(normalizedCustom) < n {
			return nil, fmt.Errorf("not enough custom words provided")
		}
		pool = append(pool, normalizedCustom...)
	} else {
		loaded, err := s.load(language)
		if err != nil {
			return nil, err
		}
		pool = append(pool, loaded...)
		for i := 0; i < customWordsWeight; i++ {
			pool = append(pool, normalizedCustom...)
		}
		if len(pool) < n {
			return nil, fmt.Errorf("not enough words available in %s", language)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	// Custom-word weighting duplicates pool entries; picks stay distinct.
	seen := make(map[string]bool, n)
	picks := make([]string, 0, n)
	for _, w := range pool {
		if seen[w] {
			continue
		}
		seen[w] = true
		picks = append(picks, w)
		if len(picks) == n {
			return picks, nil
		}
	}
	return nil, fmt.Errorf("not enough distinct words available in %s", language)
}
