package moderation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify_BlocksCaseInsensitive(t *testing.T) {
	f := NewDefaultFilter()

	cases := []struct {
		text string
		term string
	}{
		{"there is a BOMB threat in the library", "bomb"},
		{"this is a Fake Report", "fake report"},
		{"someone keeps harassing students", "harass"},
	}

	for _, tc := range cases {
		term, blocked := f.Classify(tc.text)
		if !blocked {
			t.Errorf("Classify(%q) allowed, want blocked", tc.text)
			continue
		}
		if term != tc.term {
			t.Errorf("Classify(%q) term = %q, want %q", tc.text, term, tc.term)
		}
	}
}

func TestClassify_FirstMatchWinsInLexiconOrder(t *testing.T) {
	f := NewFilter([]string{"water", "fire"})

	term, blocked := f.Classify("fire near the water tank")
	if !blocked || term != "water" {
		t.Errorf("Classify = %q, %v; want first lexicon term %q", term, blocked, "water")
	}
}

func TestClassify_AllowsCleanAndEmptyText(t *testing.T) {
	f := NewDefaultFilter()

	if term, blocked := f.Classify("water leak on the second floor"); blocked {
		t.Errorf("clean text blocked on term %q", term)
	}
	if _, blocked := f.Classify(""); blocked {
		t.Error("empty text blocked, want allowed")
	}
}

func TestSanitize_StripsMarkup(t *testing.T) {
	f := NewDefaultFilter()

	if got := f.Sanitize("  <script>alert(1)</script>Block A  "); got != "Block A" {
		t.Errorf("Sanitize = %q, want %q", got, "Block A")
	}
	if got := f.Sanitize("<b>hostel</b> 2"); got != "hostel 2" {
		t.Errorf("Sanitize = %q, want %q", got, "hostel 2")
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("blocked:\n  - foo\n  - bar\n"), 0o600); err != nil {
		t.Fatalf("failed to write lexicon file: %v", err)
	}

	terms, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon failed: %v", err)
	}
	if len(terms) != 2 || terms[0] != "foo" || terms[1] != "bar" {
		t.Errorf("LoadLexicon = %v", terms)
	}

	f := NewFilter(terms)
	if _, blocked := f.Classify("a BAR fight"); !blocked {
		t.Error("override term not blocked")
	}
	if _, blocked := f.Classify("bomb"); blocked {
		t.Error("default term still blocked after override")
	}
}

func TestLoadLexicon_EmptyListRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("blocked: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write lexicon file: %v", err)
	}

	if _, err := LoadLexicon(path); err == nil {
		t.Error("expected error for empty lexicon")
	}
}
