package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mohammad-safakhou/daydigest/config"
	"github.com/mohammad-safakhou/daydigest/internal/semantic"
)

type digestOptions struct {
	glob     string
	format   string
	parallel int
}

// digestFile pairs an output with the bundle it came from.
type digestFile struct {
	Source string `json:"source"`
	semantic.Digest
}

func digestCMD() *cobra.Command {
	var opts digestOptions
	var digest = &cobra.Command{
		Use:   "digest [files...]",
		Short: "Run extraction over one or more day bundles",
		Long: "Reads day bundles (JSON documents with visits, turns and queries) and writes\n" +
			"one digest per bundle to stdout, in input order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			paths, err := resolveInputs(args, opts.glob)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no input files (pass paths or --glob)")
			}
			semOpts, err := cfg.SemanticOptions()
			if err != nil {
				return err
			}
			semOpts.Logger = log.New(cmd.ErrOrStderr(), "[SEMANTIC] ", log.LstdFlags)
			results, err := runDigests(cmd.Context(), semantic.NewExtractor(semOpts), paths, opts.parallel)
			if err != nil {
				return err
			}
			return writeDigests(cmd.OutOrStdout(), opts.format, results)
		},
	}
	digest.Flags().StringVar(&opts.glob, "glob", "", "doublestar pattern selecting bundles, e.g. 'days/**/*.json'")
	digest.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json|yaml|text")
	digest.Flags().IntVarP(&opts.parallel, "parallel", "p", 4, "bundles processed concurrently")
	return digest
}

// resolveInputs merges explicit paths with glob matches, dropping duplicates
// and keeping first-seen order.
func resolveInputs(args []string, glob string) ([]string, error) {
	paths := append([]string(nil), args...)
	if glob != "" {
		matches, err := doublestar.FilepathGlob(glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", glob, err)
		}
		paths = append(paths, matches...)
	}
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func loadDay(path string) (semantic.DayInput, error) {
	var in semantic.DayInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

func runDigests(ctx context.Context, ex *semantic.Extractor, paths []string, parallel int) ([]digestFile, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if parallel <= 0 {
		parallel = 1
	}
	out := make([]digestFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := loadDay(path)
			if err != nil {
				return err
			}
			out[i] = digestFile{Source: path, Digest: ex.Extract(in)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func writeDigests(w io.Writer, format string, results []digestFile) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range results {
			doc, err := toYAMLValue(r)
			if err != nil {
				return err
			}
			if err := enc.Encode(doc); err != nil {
				return err
			}
		}
		return enc.Close()
	case "text":
		for _, r := range results {
			writeText(w, r)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or text)", format)
	}
}

// toYAMLValue routes through JSON so YAML keys match the JSON field names.
func toYAMLValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgGreen)
	dimColor    = color.New(color.Faint)
)

func writeText(w io.Writer, r digestFile) {
	date := r.Date
	if date == "" {
		date = "(undated)"
	}
	headerColor.Fprintf(w, "%s  %s\n", date, r.Source)

	fmt.Fprintf(w, "  reading clusters: %d\n", len(r.Clusters))
	for _, c := range r.Clusters {
		fmt.Fprintf(w, "    - ")
		labelColor.Fprintf(w, "%s", c.Label)
		dimColor.Fprintf(w, " [%s, %d articles, %s]\n", c.IntentSignal, len(c.Articles), c.TimeRange.Duration())
	}
	fmt.Fprintf(w, "  task sessions: %d\n", len(r.TaskSessions))
	for _, s := range r.TaskSessions {
		fmt.Fprintf(w, "    - ")
		labelColor.Fprintf(w, "%s", s.TaskTitle)
		dimColor.Fprintf(w, " [%s, %s, %d turns]\n", s.TaskType, s.TopicCluster, s.TurnCount)
	}
	fmt.Fprintf(w, "  search missions: %d\n", len(r.SearchMissions))
	for _, m := range r.SearchMissions {
		fmt.Fprintf(w, "    - ")
		labelColor.Fprintf(w, "%s", m.Label)
		dimColor.Fprintf(w, " [%s, %d queries, %d visits]\n", m.IntentType, len(m.Queries), len(m.Visits))
	}
}
