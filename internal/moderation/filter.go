package moderation

import (
	"fmt"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// defaultLexicon is the built-in list of disallowed terms. Scan order
// matters: Classify reports the first matching term.
var defaultLexicon = []string{
	"abuse", "idiot", "stupid", "fake report", "prank", "sexual", "harass", "kill",
	"bomb", "terror", "xxx", "nsfw", "hate", "racist", "violence", "threat",
	"spam", "scam", "fraud", "illegal", "drugs", "weapon", "suicide",
}

// Filter classifies free text against a fixed lexicon. It is pure and safe
// for concurrent use.
type Filter struct {
	terms  []string
	policy *bluemonday.Policy
}

func NewFilter(terms []string) *Filter {
	if terms == nil {
		terms = defaultLexicon
	}
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return &Filter{
		terms:  lowered,
		policy: bluemonday.StrictPolicy(),
	}
}

func NewDefaultFilter() *Filter {
	return NewFilter(nil)
}

type lexiconFile struct {
	Blocked []string `yaml:"blocked"`
}

// LoadLexicon reads a YAML lexicon override ("blocked: [term, ...]").
func LoadLexicon(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading lexicon file: %w", err)
	}

	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("error parsing lexicon file: %w", err)
	}
	if len(lf.Blocked) == 0 {
		return nil, fmt.Errorf("lexicon file %s lists no blocked terms", path)
	}
	return lf.Blocked, nil
}

// Classify returns the first lexicon term contained in text,
// case-insensitive. Empty text is always allowed.
func (f *Filter) Classify(text string) (term string, blocked bool) {
	if text == "" {
		return "", false
	}
	lowered := strings.ToLower(text)
	for _, t := range f.terms {
		if strings.Contains(lowered, t) {
			return t, true
		}
	}
	return "", false
}

// Sanitize strips markup and surrounding whitespace from user input before
// it is filtered or stored.
func (f *Filter) Sanitize(s string) string {
	return strings.TrimSpace(f.policy.Sanitize(s))
}
