package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/axelberardino/regextrie"
)

// PatternSet is the YAML form of a pattern file:
//
//	scorer: url
//	patterns:
//	  - https://www\.google\.com/.*
//	  - https://www\.google\.com/maps
type PatternSet struct {
	Scorer   string   `yaml:"scorer"`
	Patterns []string `yaml:"patterns"`
}

// scorers maps the names accepted by the scorer field and -scorer flag.
var scorers = map[string]regextrie.Scorer{
	"":        regextrie.DefaultScorer,
	"default": regextrie.DefaultScorer,
	"length":  regextrie.LengthScorer,
	"url":     regextrie.URLPathScorer,
}

func scorerByName(name string) (regextrie.Scorer, error) {
	s, ok := scorers[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown scorer %q (must be default, length, or url)", name)
	}
	return s, nil
}

// readPatterns reads one pattern per line. Blank lines and lines starting
// with # are skipped; other lines are kept verbatim.
func readPatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read patterns")
	}
	return patterns, nil
}

func loadPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pattern file")
	}
	defer f.Close()

	patterns, err := readPatterns(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return patterns, nil
}

func parseSet(data []byte) (PatternSet, error) {
	var set PatternSet
	if err := yaml.UnmarshalStrict(data, &set); err != nil {
		return PatternSet{}, errors.Wrap(err, "parse pattern set")
	}
	if _, err := scorerByName(set.Scorer); err != nil {
		return PatternSet{}, err
	}
	return set, nil
}

func loadSetFile(path string) (PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PatternSet{}, errors.Wrap(err, "read pattern set")
	}
	set, err := parseSet(data)
	if err != nil {
		return PatternSet{}, errors.Wrapf(err, "load %s", path)
	}
	return set, nil
}
