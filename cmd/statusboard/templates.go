package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/templates"
	templategit "machinehub/statusboard/pkg/templates/git"
)

var templatesFlags struct {
	format string
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and sync the template file",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded templates",
	Long: `List the templates the server would use: the file's default and per-device
entries. When the file sets no default the configured built-in default is
shown as "(built-in)".`,
	Args: cobra.NoArgs,
	RunE: listTemplates,
}

var templatesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the template repository now",
	Long: `Pull templates.git.repository and validate the template file from the new
commit. Requires templates.git.enabled.`,
	Args: cobra.NoArgs,
	RunE: syncTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd, templatesSyncCmd)

	templatesListCmd.Flags().StringVarP(&templatesFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func listTemplates(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(templatesFlags.format)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	file := a.templates.Snapshot()
	entries := file.Entries()
	if file.Default == "" {
		entries = append([]templates.Entry{{Key: "(built-in)", Template: a.cfg.Templates.DefaultTemplate}}, entries...)
	}

	table := cli.Table{Headers: []string{"KEY", "TEMPLATE", "VALID"}}
	for _, e := range entries {
		valid := "yes"
		if err := a.pipeline.Lint(e.Template); err != nil {
			valid = "no"
		}
		table.Append(e.Key, e.Template, valid)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}

func syncTemplates(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.gitRepo == nil {
		return cli.NewConfigError("templates.git.enabled", "template repository is not enabled")
	}

	poller := templategit.NewPoller(a.gitRepo, a.cfg.Templates.Git.PollInterval, a.templates.Load, a.logger)
	reloaded, err := poller.Check(cmd.Context())
	if err != nil {
		return cli.NewCommandError("templates sync", err)
	}

	commit, err := a.gitRepo.CurrentCommit()
	if err != nil {
		return cli.NewCommandError("templates sync", err)
	}

	out := cmd.OutOrStdout()
	subject, _, _ := strings.Cut(commit.Message, "\n")
	if reloaded {
		fmt.Fprintf(out, "✓ Templates updated to %.8s %s\n", commit.SHA, subject)
	} else {
		fmt.Fprintf(out, "✓ Templates up to date at %.8s %s\n", commit.SHA, subject)
	}
	return nil
}
