// Command labelsort runs the label pipeline against local PDF files.
//
//	labelsort classify [-mode product|courier] <file.pdf>
//	labelsort sort     [-mode product|courier] [-strip=true] <file.pdf>
//	labelsort export   -key <group> [-pages 0,2,5] [-mode product|courier] <file.pdf>
//	labelsort crop     <file.pdf>
//
// Every subcommand accepts -config to read a [labels] TOML section and -v for
// debug logging. Results are written to stdout as JSON; logs go to stderr.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/pkg/labels"
)

const usage = `usage: labelsort <command> [flags] <file.pdf>

commands:
  classify  print the page groups found in a document
  sort      write <file>_sorted.pdf with pages grouped
  export    write the pages of one group to a new document
  crop      write <file>_cropped.pdf with every page cut to the label region
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	flags *flag.FlagSet
	exec  func(s *labels.Sorter, path string, out io.Writer) error
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	configPath := cmd.flags.String("config", "", "TOML file with a [labels] section")
	verbose := cmd.flags.Bool("v", false, "log pipeline stages")
	cmd.flags.SetOutput(stderr)

	if err := cmd.flags.Parse(args[1:]); err != nil {
		return 2
	}
	if cmd.flags.NArg() != 1 {
		fmt.Fprintf(stderr, "%s: expected exactly one PDF path\n", args[0])
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("command", args[0])

	labelsCfg, err := config.LoadLabels(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		return 1
	}

	sorter, err := labels.New(
		labelsCfg.Rules(),
		labels.WithObserver(labels.LogObserver(logger.With("system", "labels"))),
	)
	if err != nil {
		logger.Error("sorter init failed", "error", err)
		return 1
	}

	path := cmd.flags.Arg(0)
	if err := cmd.exec(sorter, path, stdout); err != nil {
		logger.Error("command failed", "path", path, "error", err)
		if errors.Is(err, labels.ErrInvalidInput) {
			return 2
		}
		return 1
	}
	return 0
}

func commands(name string) (*command, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	switch name {
	case "classify":
		mode := fs.String("mode", "product", "group by product or courier")
		return &command{flags: fs, exec: func(s *labels.Sorter, path string, out io.Writer) error {
			m, err := labels.ParseMode(*mode)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%w: %v", labels.ErrIO, err)
			}
			groups, err := s.Classify(data, m)
			if err != nil {
				return err
			}
			return writeJSON(out, groups)
		}}, true

	case "sort":
		mode := fs.String("mode", "product", "group by product or courier")
		strip := fs.Bool("strip", true, "crop each page to the label region")
		return &command{flags: fs, exec: func(s *labels.Sorter, path string, out io.Writer) error {
			m, err := labels.ParseMode(*mode)
			if err != nil {
				return err
			}
			res, err := s.SortFile(path, m, *strip)
			if err != nil {
				return err
			}
			return writeJSON(out, res)
		}}, true

	case "export":
		key := fs.String("key", "", "group key used to name the output")
		pageList := fs.String("pages", "", "comma separated 0-based page indices; defaults to the group's pages")
		mode := fs.String("mode", "product", "grouping used to resolve -key when -pages is empty")
		return &command{flags: fs, exec: func(s *labels.Sorter, path string, out io.Writer) error {
			if strings.TrimSpace(*key) == "" {
				return fmt.Errorf("%w: -key is required", labels.ErrInvalidInput)
			}
			pages, err := parsePages(*pageList)
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				if pages, err = groupPages(s, path, *mode, *key); err != nil {
					return err
				}
			}
			dest, err := s.ExportFile(path, *key, pages)
			if err != nil {
				return err
			}
			return writeJSON(out, map[string]any{"output_path": dest, "key": *key, "pages": pages})
		}}, true

	case "crop":
		return &command{flags: fs, exec: func(s *labels.Sorter, path string, out io.Writer) error {
			dest, err := s.CropFile(path)
			if err != nil {
				return err
			}
			return writeJSON(out, map[string]string{"output_path": dest})
		}}, true
	}

	return nil, false
}

func groupPages(s *labels.Sorter, path, mode, key string) ([]int, error) {
	m, err := labels.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", labels.ErrIO, err)
	}
	groups, err := s.Classify(data, m)
	if err != nil {
		return nil, err
	}
	g, ok := labels.Find(groups, key)
	if !ok {
		return nil, fmt.Errorf("%w: no group %q", labels.ErrInvalidInput, key)
	}
	return g.Pages, nil
}

func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	pages := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad page index %q", labels.ErrInvalidInput, p)
		}
		pages = append(pages, n)
	}
	return pages, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
