// Package main is the regextrie command: it loads a pattern set and prints,
// for every query, the patterns matching it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/axelberardino/regextrie"
)

// Version information (set via ldflags during build).
var version = "dev"

// errUsage reports bad command-line usage; the message was already printed.
var errUsage = errors.New("usage")

// options holds the parsed command line.
type options struct {
	PatternsPath string
	SetPath      string
	Scorer       string
	Best         bool
	Stats        bool
	NoPrefilter  bool
	LogLevel     string
	Queries      []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 2
	}

	logger := newLogger(stderr, opts.LogLevel)

	trie, err := buildTrie(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.Stats {
		s := trie.Stats()
		fmt.Fprintf(stdout, "nodes=%d regexes=%d plain=%d prefiltered=%d root=%d\n",
			s.NumNodes, s.NumPatterns, s.NumPlain, s.NumPrefiltered, s.NumRootPatterns)
	}
	defer func() {
		if opts.Stats {
			logger.Info("prefilters retired", "count", trie.Stats().NumRetired)
		}
	}()

	query := func(input string) {
		if opts.Best {
			if best, ok := trie.FindBestMatch(input); ok {
				fmt.Fprintf(stdout, "%s\t%s\n", input, best)
			} else {
				fmt.Fprintf(stdout, "%s\t-\n", input)
			}
			return
		}
		matches := trie.FindMatches(input)
		fmt.Fprintf(stdout, "%s\t%d\n", input, len(matches))
		for _, m := range matches {
			fmt.Fprintf(stdout, "\t%s\n", m)
		}
	}

	if len(opts.Queries) > 0 {
		for _, q := range opts.Queries {
			query(q)
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		query(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", errors.Wrap(err, "read queries"))
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("regextrie", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.PatternsPath, "patterns", "", "Pattern file, one pattern per line")
	fs.StringVar(&opts.PatternsPath, "p", "", "Pattern file, one pattern per line (shorthand)")
	fs.StringVar(&opts.SetPath, "set", "", "YAML pattern set (scorer and patterns)")
	fs.StringVar(&opts.SetPath, "s", "", "YAML pattern set (shorthand)")
	fs.StringVar(&opts.Scorer, "scorer", "", "Scorer: default, length, or url (overrides the set file)")
	fs.BoolVar(&opts.Best, "best", false, "Print only the best match of each query")
	fs.BoolVar(&opts.Best, "b", false, "Print only the best match of each query (shorthand)")
	fs.BoolVar(&opts.Stats, "stats", false, "Print trie statistics before the queries")
	fs.BoolVar(&opts.NoPrefilter, "no-prefilter", false, "Always run the regex engine on candidates")
	fs.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "regextrie - match inputs against a pool of regular expressions\n\n")
		fmt.Fprintf(stderr, "Usage: regextrie (-patterns file | -set file.yaml) [options] [queries...]\n\n")
		fmt.Fprintf(stderr, "Queries are read from stdin, one per line, when none are given.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  regextrie -p routes.txt https://www.google.com/maps\n")
		fmt.Fprintf(stderr, "  regextrie -s routes.yaml -best < urls.txt\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, err
		}
		// The flag package already printed the error and usage.
		return opts, errUsage
	}

	if showVersion {
		fmt.Fprintf(stdout, "regextrie %s\n", version)
		return opts, flag.ErrHelp
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return opts, errors.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	if (opts.PatternsPath == "") == (opts.SetPath == "") {
		fmt.Fprintf(stderr, "Error: exactly one of -patterns or -set is required\n")
		fs.Usage()
		return opts, errUsage
	}

	opts.Queries = fs.Args()
	return opts, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	// Already validated by parseFlags.
	_ = lvl.UnmarshalText([]byte(level))
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// buildTrie loads the pattern source named in opts and indexes it. Patterns
// that fail to compile are logged and skipped.
func buildTrie(opts options, logger *slog.Logger) (*regextrie.RegexTrie, error) {
	var set PatternSet
	if opts.SetPath != "" {
		var err error
		if set, err = loadSetFile(opts.SetPath); err != nil {
			return nil, err
		}
	} else {
		patterns, err := loadPatternFile(opts.PatternsPath)
		if err != nil {
			return nil, err
		}
		set.Patterns = patterns
	}

	if opts.Scorer != "" {
		set.Scorer = opts.Scorer
	}
	scorer, err := scorerByName(set.Scorer)
	if err != nil {
		return nil, err
	}

	config := regextrie.DefaultConfig()
	config.Scorer = scorer
	config.EnablePrefilter = !opts.NoPrefilter
	config.Logger = logger

	trie, err := regextrie.NewWithConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "create trie")
	}

	rejected := 0
	for _, p := range set.Patterns {
		if err := trie.Insert(p); err != nil {
			logger.Warn("skipping pattern", "pattern", p, "error", err)
			rejected++
		}
	}
	logger.Info("patterns loaded",
		"total", len(set.Patterns),
		"rejected", rejected,
		"regexes", trie.Len(),
	)
	return trie, nil
}
