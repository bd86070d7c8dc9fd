package corpus

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a difficulty-sorted CSV with Word, Score and Gloss columns and a
// file of alternate answers, one per line, and builds a Corpus from them.
func Load(wordsPath, alternatesPath string, boundaries []int) (*Corpus, error) {
	f, err := os.Open(wordsPath)
	if err != nil {
		return nil, &ConfigurationError{fmt.Sprintf("open words: %v", err)}
	}
	defer f.Close()
	entries, err := ReadEntries(f)
	if err != nil {
		return nil, err
	}

	var alternates []string
	if alternatesPath != "" {
		af, err := os.Open(alternatesPath)
		if err != nil {
			return nil, &ConfigurationError{fmt.Sprintf("open alternates: %v", err)}
		}
		defer af.Close()
		if alternates, err = ReadLines(af); err != nil {
			return nil, err
		}
	}
	return New(entries, alternates, boundaries)
}

// ReadEntries parses scored word rows. The header row locates the columns.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, &ConfigurationError{fmt.Sprintf("read header: %v", err)}
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	wi, ok1 := col["word"]
	si, ok2 := col["score"]
	gi, ok3 := col["gloss"]
	if !ok1 || !ok2 || !ok3 {
		return nil, &ConfigurationError{fmt.Sprintf("header %v lacks Word, Score or Gloss", header)}
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ConfigurationError{fmt.Sprintf("line %d: %v", line, err)}
		}
		if len(rec) <= wi || len(rec) <= si || len(rec) <= gi {
			return nil, &ConfigurationError{fmt.Sprintf("line %d: short row", line)}
		}
		score, err := strconv.Atoi(strings.TrimSpace(rec[si]))
		if err != nil {
			return nil, &ConfigurationError{fmt.Sprintf("line %d: bad score %q", line, rec[si])}
		}
		entries = append(entries, Entry{Word: rec[wi], Points: score, Definition: strings.TrimSpace(rec[gi])})
	}
	if len(entries) == 0 {
		return nil, &ConfigurationError{"no words"}
	}
	return entries, nil
}

// ReadLines returns the non-blank, non-comment lines of r, lowercased.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}
