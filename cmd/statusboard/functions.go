package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/mhpl/functions"
)

var functionsFlags struct {
	format string
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the template function table",
	Args:  cobra.NoArgs,
	RunE:  listFunctions,
}

func init() {
	rootCmd.AddCommand(functionsCmd)

	functionsCmd.Flags().StringVarP(&functionsFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func listFunctions(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(functionsFlags.format)
	if err != nil {
		return err
	}

	table := cli.Table{Headers: []string{"NAME", "ARITY", "USAGE", "DESCRIPTION"}}
	for _, e := range functions.New(functions.Config{}).Entries() {
		table.Append(e.Name, strconv.Itoa(e.Arity), usage(e), e.Doc)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}

// usage renders a call example such as #plus(a,b).
func usage(e *functions.Entry) string {
	params := make([]string, e.Arity)
	for i := range params {
		params[i] = string(rune('a' + i))
	}
	return "#" + e.Name + "(" + strings.Join(params, ",") + ")"
}
