package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/templates"
)

var lintFlags struct {
	file   string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [TEMPLATE...]",
	Short: "Validate MHPL templates",
	Long: `Validate MHPL templates without rendering them.

Templates given as arguments are linted directly. Without arguments every
template in the template file (--file, or templates.path from the config)
is linted. Linting checks:
  - Grammar (balanced parentheses, call syntax, nesting depth)
  - Function names, with a suggestion for near misses
  - Argument counts wherever they are known without rendering

Examples:
  statusboard lint '#plus(#alives(),1)'
  statusboard lint --file templates.yaml
  statusboard lint --format json`,
	RunE: lintTemplates,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "template file to validate")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the lint outcome for one template.
type LintResult struct {
	Source   string      `json:"source"`
	Template string      `json:"template"`
	Valid    bool        `json:"valid"`
	Issues   []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single lint finding.
type LintIssue struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
	Offset     *int   `json:"offset,omitempty"` // Byte offset into Fragment
	Fragment   string `json:"fragment,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type lintEntry struct {
	source   string
	template string
}

func lintTemplates(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil || format == cli.FormatCSV {
		return fmt.Errorf("unsupported lint format %q: must be 'text' or 'json'", lintFlags.format)
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var entries []lintEntry
	if len(args) > 0 {
		if lintFlags.file != "" {
			return fmt.Errorf("give either template arguments or --file, not both")
		}
		for i, arg := range args {
			entries = append(entries, lintEntry{source: "arg " + strconv.Itoa(i+1), template: arg})
		}
	} else {
		path := lintFlags.file
		if path == "" {
			path = a.cfg.Templates.FilePath()
		}
		file, err := templates.ReadFile(path)
		if err != nil {
			return cli.NewCommandError("lint", err)
		}
		for _, e := range file.Entries() {
			entries = append(entries, lintEntry{source: path + ":" + e.Key, template: e.Template})
		}
		if len(entries) == 0 {
			return cli.NewCommandError("lint", fmt.Errorf("no templates found in %s", path))
		}
	}

	results := make([]LintResult, 0, len(entries))
	var failed []error
	for _, e := range entries {
		err := a.pipeline.Lint(e.template)
		results = append(results, LintResult{
			Source:   e.source,
			Template: e.template,
			Valid:    err == nil,
			Issues:   lintIssues(err),
		})
		if err != nil {
			failed = append(failed, err)
		}
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		writeLintText(out, results)
	}

	if len(failed) > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d template(s) invalid: %w",
			len(failed), len(results), errors.Join(failed...)))
	}
	return nil
}

// lintIssues flattens a lint error into findings.
func lintIssues(err error) []LintIssue {
	if err == nil {
		return nil
	}

	var list *mhplErrors.ErrorList
	if errors.As(err, &list) {
		issues := make([]LintIssue, 0, list.Count())
		for _, e := range list.Errors {
			issues = append(issues, LintIssue{
				Kind:       string(e.Kind),
				Message:    e.Message,
				Path:       e.Path,
				Suggestion: e.Suggestion,
			})
		}
		return issues
	}

	issue := LintIssue{Kind: string(mhplErrors.KindOf(err)), Message: err.Error()}
	var parseErr *mhplErrors.ParseError
	if errors.As(err, &parseErr) {
		issue.Message = parseErr.Message
		issue.Fragment = parseErr.Fragment
		if parseErr.Offset >= 0 {
			offset := parseErr.Offset
			issue.Offset = &offset
		}
	}
	var notFound *mhplErrors.FunctionNotFoundError
	if errors.As(err, &notFound) {
		issue.Suggestion = notFound.Suggestion
	}
	return []LintIssue{issue}
}

func writeLintText(w io.Writer, results []LintResult) {
	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s\n", r.Source)
			continue
		}
		invalid++
		fmt.Fprintf(w, "✗ %s: %q\n", r.Source, r.Template)
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "    [%s] %s", issue.Kind, issue.Message)
			if issue.Path != "" {
				fmt.Fprintf(w, " (at %s)", issue.Path)
			}
			if issue.Offset != nil {
				fmt.Fprintf(w, " (offset %d in %q)", *issue.Offset, issue.Fragment)
			}
			fmt.Fprintln(w)
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "    %s\n", issue.Suggestion)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d template(s), %d invalid\n", len(results), invalid)
}
