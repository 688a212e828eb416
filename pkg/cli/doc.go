/*
Package cli provides command-line helpers shared by the statusboard commands.

Output Formatting:

Command results are printed as text, JSON or CSV. A Table renders as an
aligned text table, a JSON array of objects keyed by header, or CSV rows:

	table := cli.Table{Headers: []string{"NAME", "ALIVE"}}
	table.Append("gpu-01", "true")
	if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Errors and Exit Codes:

Commands wrap failures in CommandError. ExitCode maps template errors to
exit status 2 so scripts can tell a bad template from an operational failure.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
