package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultFilter(t *testing.T) {
	for _, word := range []string{"hello", "naïve", "don't"} {
		if !Default(word) {
			t.Fatalf("expected %q to pass the default filter", word)
		}
	}
	for _, word := range []string{"pneumonoultramicroscopic", "", "--"} {
		if Default(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestTypeable(t *testing.T) {
	for _, word := range []string{"résumé", "co-op", "x2"} {
		if !Typeable(word) {
			t.Fatalf("expected %q to be typeable", word)
		}
	}
	for _, word := range []string{"--", "42", "", "a\tb"} {
		if Typeable(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestReadDedupesAndSkipsComments(t *testing.T) {
	words, err := Read(strings.NewReader("# header\nalpha beta\n\n beta -- gamma # trailing\n"), nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Join(words, ",") != "alpha,beta,gamma" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("123\n--\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadFile(path, nil)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
