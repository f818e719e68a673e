package moderation

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"strings"
)

// WordList carries the loaded censored words plus metadata for logging.
type WordList struct {
	Words     []string
	Languages []string
}

// LoadWords scans dir inside fsys for .txt dictionaries, one word per line,
// named after their language (e.g. "fr.txt"). Lines are deduplicated across
// files. An empty result is an error: a moderator without words is a
// misconfiguration, not a passthrough.
func LoadWords(fsys fs.FS, dir string) (*WordList, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// Scanner handles \n and \r\n line endings alike.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, fmt.Errorf("no censored words found in %q", dir)
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return &WordList{Words: words, Languages: languages}, nil
}
