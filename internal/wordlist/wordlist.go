// Package wordlist loads user supplied word lists.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when no usable word survives filtering.
var ErrEmpty = errors.New("word list is empty")

// LoadFile reads a word list from path. A nil keep means Default.
func LoadFile(path string, keep FilterFunc) (words []string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close word list: %w", cerr)
		}
	}()
	if words, err = Read(file, keep); err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return words, nil
}

// Read collects whitespace separated words accepted by keep, dropping
// duplicates. Text after '#' on a line is a comment.
func Read(r io.Reader, keep FilterFunc) ([]string, error) {
	if keep == nil {
		keep = Default
	}
	seen := make(map[string]struct{})
	var words []string
	lines := bufio.NewScanner(r)
	for lines.Scan() {
		line, _, _ := strings.Cut(lines.Text(), "#")
		for _, word := range strings.Fields(line) {
			if _, dup := seen[word]; dup || !keep(word) {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}
