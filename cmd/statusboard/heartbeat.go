package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
)

var heartbeatFlags struct {
	report string
}

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat NAME",
	Short: "Record a heartbeat and print the reply",
	Long: `Record a heartbeat for a registered device and print the rendered reply,
as the HTTP endpoint POST /api/heartbeat would return it.

Examples:
  statusboard heartbeat gpu-01
  statusboard heartbeat gpu-01 --report "GPU 480MiB used"`,
	Args: cobra.ExactArgs(1),
	RunE: runHeartbeat,
}

func init() {
	rootCmd.AddCommand(heartbeatCmd)

	heartbeatCmd.Flags().StringVarP(&heartbeatFlags.report, "report", "r", "", "free text stored as the device report")
}

func runHeartbeat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.responder.Heartbeat(cmd.Context(), args[0], heartbeatFlags.report)
	if err != nil {
		return cli.NewCommandError("heartbeat", err)
	}
	if reply.Fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: template failed to render: %v\n", reply.Err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return err
}
