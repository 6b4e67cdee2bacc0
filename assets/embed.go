// Package assets embeds the built-in word lists.
//
// answers.txt holds candidate target words of 3 to 10 letters; allowed.txt
// holds further words accepted as guesses. Blank lines and lines starting
// with '#' are ignored.
package assets

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return out, nil
}

// AnswersList returns the candidate target words, lowercase.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

// AllowedList returns the extra guess words, lowercase.
func AllowedList() ([]string, error) {
	return readLines("allowed.txt")
}
