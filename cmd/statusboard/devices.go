package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/registry"
	"machinehub/statusboard/pkg/registry/retention"
)

var devicesFlags struct {
	format  string
	report  string
	message string
	since   time.Duration
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage registered devices",
	Long: `Manage the device registry.

Subcommands:
  list          - List devices with their alive state
  register      - Register a new device
  set-message   - Replace a device's return message template
  activate      - Mark a device active
  deactivate    - Mark a device inactive
  history       - Show devices seen per 15 minute bucket
  prune         - Remove heartbeat history older than retention.max_age`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices",
	Args:  cobra.NoArgs,
	RunE:  listDevices,
}

var devicesRegisterCmd = &cobra.Command{
	Use:   "register NAME",
	Short: "Register a device",
	Long: `Register a device. A return message is linted before it is stored.

Examples:
  statusboard devices register gpu-01
  statusboard devices register gpu-01 --message 'Up: #alives() of #devices()'`,
	Args: cobra.ExactArgs(1),
	RunE: registerDevice,
}

var devicesSetMessageCmd = &cobra.Command{
	Use:   "set-message NAME TEMPLATE",
	Short: "Replace a device's return message",
	Long: `Replace the template rendered back to a device. An empty TEMPLATE clears it
so the template file applies again.`,
	Args: cobra.ExactArgs(2),
	RunE: setMessage,
}

var devicesActivateCmd = &cobra.Command{
	Use:   "activate NAME",
	Short: "Mark a device active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], true)
	},
}

var devicesDeactivateCmd = &cobra.Command{
	Use:   "deactivate NAME",
	Short: "Mark a device inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], false)
	},
}

var devicesHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show heartbeat history",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

var devicesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune heartbeat history",
	Args:  cobra.NoArgs,
	RunE:  pruneHistory,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd, devicesRegisterCmd, devicesSetMessageCmd,
		devicesActivateCmd, devicesDeactivateCmd, devicesHistoryCmd, devicesPruneCmd)

	devicesListCmd.Flags().StringVarP(&devicesFlags.format, "format", "f", "text", "output format: text, json, csv")

	devicesRegisterCmd.Flags().StringVarP(&devicesFlags.report, "report", "r", "", "initial report")
	devicesRegisterCmd.Flags().StringVarP(&devicesFlags.message, "message", "m", "", "return message template")

	devicesHistoryCmd.Flags().StringVarP(&devicesFlags.format, "format", "f", "text", "output format: text, json, csv")
	devicesHistoryCmd.Flags().DurationVar(&devicesFlags.since, "since", 24*time.Hour, "how far back to look")
}

func listDevices(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(devicesFlags.format)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	devices, err := a.store.Devices(cmd.Context())
	if err != nil {
		return cli.NewCommandError("devices list", err)
	}

	now := time.Now()
	table := cli.Table{Headers: []string{"NAME", "ALIVE", "ACTIVE", "LAST_HEARTBEAT", "ELAPSED", "REPORT"}}
	for _, d := range devices {
		last, elapsed := "never", ""
		if d.HasHeartbeat() {
			last = d.LastHeartbeat.UTC().Format(time.RFC3339)
			elapsed = now.Sub(d.LastHeartbeat).Truncate(time.Second).String()
		}
		table.Append(d.Name,
			strconv.FormatBool(d.AliveAt(now, a.cfg.Pipeline.AliveWindow)),
			strconv.FormatBool(d.Active),
			last, elapsed, d.Report)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}

func registerDevice(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if devicesFlags.message != "" {
		if err := a.pipeline.Lint(devicesFlags.message); err != nil {
			return cli.NewCommandError("devices register", err)
		}
	}

	err = a.store.Register(cmd.Context(), registry.Device{
		Name:          args[0],
		Report:        devicesFlags.report,
		ReturnMessage: devicesFlags.message,
		Active:        true,
	})
	if err != nil {
		return cli.NewCommandError("devices register", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s\n", args[0])
	return err
}

func setMessage(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	name, message := args[0], args[1]
	if message != "" {
		if err := a.pipeline.Lint(message); err != nil {
			return cli.NewCommandError("devices set-message", err)
		}
	}
	if err := a.store.SetReturnMessage(cmd.Context(), name, message); err != nil {
		return cli.NewCommandError("devices set-message", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated return message for %s\n", name)
	return err
}

func setActive(cmd *cobra.Command, name string, active bool) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetActive(cmd.Context(), name, active); err != nil {
		return cli.NewCommandError("devices "+cmd.Name(), err)
	}
	state := "inactive"
	if active {
		state = "active"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is %s\n", name, state)
	return err
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(devicesFlags.format)
	if err != nil {
		return err
	}
	if devicesFlags.since <= 0 {
		return fmt.Errorf("--since must be positive")
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	buckets, err := a.store.HeartbeatCounts(cmd.Context(), time.Now().Add(-devicesFlags.since))
	if err != nil {
		return cli.NewCommandError("devices history", err)
	}

	table := cli.Table{Headers: []string{"BUCKET", "DEVICES"}}
	for _, b := range buckets {
		table.Append(b.At.UTC().Format(time.RFC3339), strconv.Itoa(b.Devices))
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	pruner := retention.NewPruner(a.store, retention.FromConfig(a.cfg.Retention)).
		WithRecorder(a.metrics).
		WithLogger(a.logger)

	removed, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("devices prune", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d heartbeat row(s) older than %s\n",
		removed, pruner.Cutoff().UTC().Format(time.RFC3339))
	return err
}
