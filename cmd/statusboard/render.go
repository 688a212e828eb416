package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
)

var renderFlags struct {
	file   string
	device string
	ast    bool
}

var renderCmd = &cobra.Command{
	Use:   "render [TEMPLATE]",
	Short: "Render an MHPL template",
	Long: `Render an MHPL template against the device registry and print the result.

The template is taken from the argument, from --file, or, with --device, from
the device's return message or the template file. With --device the reply is
produced exactly as a heartbeat would produce it, including the fallback to
the raw template when rendering fails, but no heartbeat is recorded.

Examples:
  statusboard render 'Alive Device: #alives() / #devices()'
  statusboard render --file motd.mhpl
  statusboard render --device gpu-01
  statusboard render --ast '#plus(#alives(),1)'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.file, "file", "f", "", "read the template from a file (- for stdin)")
	renderCmd.Flags().StringVarP(&renderFlags.device, "device", "d", "", "render the reply for a registered device")
	renderCmd.Flags().BoolVar(&renderFlags.ast, "ast", false, "print the parsed tree instead of rendering")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if renderFlags.device != "" {
		if len(args) > 0 || renderFlags.file != "" {
			return fmt.Errorf("--device cannot be combined with a template")
		}
		reply, err := a.responder.Respond(cmd.Context(), renderFlags.device)
		if err != nil {
			return cli.NewCommandError("render", err)
		}
		_, err = fmt.Fprintln(out, reply.Text)
		return err
	}

	tmpl, err := templateInput(cmd, args, renderFlags.file)
	if err != nil {
		return err
	}

	if renderFlags.ast {
		msg, err := a.pipeline.Parse(tmpl)
		if err != nil {
			return cli.NewCommandError("render", err)
		}
		_, err = fmt.Fprintln(out, msg.String())
		return err
	}

	text, err := a.pipeline.Feed(cmd.Context(), tmpl)
	if err != nil {
		return cli.NewCommandError("render", err)
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// templateInput returns the template named by args or file.
func templateInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("give either a template argument or --file, not both")
	case len(args) > 0:
		return args[0], nil
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return strings.TrimSuffix(string(data), "\n"), err
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	default:
		return "", fmt.Errorf("a template argument or --file is required")
	}
}
