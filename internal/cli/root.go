// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/elicense/internal/app"
	"github.com/law-makers/elicense/internal/config"
	"github.com/law-makers/elicense/internal/engine"
	"github.com/law-makers/elicense/internal/reqctx"
	"github.com/law-makers/elicense/internal/ui"
)

// rootCmd represents the base command; the tool has no subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elicense",
		Short: "Export Connecticut dentist licenses to CSV",
		Long: `Runs the Connecticut eLicense lookup for active dentist credentials, walks every
result page and writes the combined, de-duplicated table to
outputs/connecticut_dentists_landing.csv.

If the portal redirects to its error page, export the cookies of a verified
browser session in Netscape format and pass them with --cookies.`,
		Example: `  # Run the lookup
  elicense

  # Reuse a verified browser session
  elicense --cookies cookies.txt`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLookup,
	}

	config.RegisterFlags(cmd)
	cmd.Flags().String("cookies", "", "Netscape-format cookies.txt to load before the first request")

	cmd.Flags().BoolP("help", "h", false, "Help for elicense")
	cmd.Flags().Bool("version", false, "Version for elicense")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(customHelpFunc)
	cmd.SetUsageFunc(customUsageFunc)

	// Initialize the application lazily so -h/--version never touch the network
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if cfg.Quiet {
			out = io.Discard
		}

		ctx := reqctx.WithRunContext(cmd.Context())
		cmd.SetContext(ctx)

		a, err := app.New(ctx, cfg, out)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		_ = a.Close(context.Background())
		SetApp(cmd, nil)
	}

	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := cmd.Context()
	log.Debug().
		Str("run_id", reqctx.RunID(ctx)).
		Str("base_url", a.Config.BaseURL).
		Str("cookies", a.Config.CookiesPath).
		Msg("Starting lookup")

	res, err := a.Lookup.Run(ctx)
	if err != nil {
		return reqctx.NewRunError(ctx, err)
	}

	if res.Empty || a.Config.Quiet {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", ui.Success(fmt.Sprintf("SUCCESS: Saved %d rows to %s", res.Rows, res.OutputPath)))
	return nil
}

// Execute runs the root command and exits with status 1 on any error.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err with its debug artifact and hint, if any
func reportError(w io.Writer, err error) {
	log.Error().Err(err).Msg("Lookup failed")

	fmt.Fprintf(w, "%s %v\n", ui.Error("ERROR:"), err)

	var ee *engine.EngineError
	if !errors.As(err, &ee) {
		return
	}
	if path := ee.DebugFile(); path != "" {
		fmt.Fprintf(w, "  Saved %s\n", path)
	}
	if ee.Hint != "" {
		fmt.Fprintf(w, "  %s\n", ui.Info(ee.Hint))
	}
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Bold(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintf(w, "%s\n", cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
	}

	fmt.Fprintf(w, "\n%s\n", ui.Bold("Usage"))
	fmt.Fprintf(w, "  %s\n", cmd.UseLine())

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Examples"))
		lastWasCommand := false
		for _, example := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(example)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s\n", ui.Info(trimmed))
				lastWasCommand = false
			} else {
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Flags"))
		printFlagsTo(w, cmd.Flags().FlagUsages())
	}
	fmt.Fprintln(w)
}

// customUsageFunc provides a colorized usage output
func customUsageFunc(cmd *cobra.Command) error {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Usage"))
	fmt.Fprintf(w, "  %s\n", cmd.UseLine())

	if cmd.HasAvailableFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Flags"))
		printFlagsTo(w, cmd.Flags().FlagUsages())
	}

	fmt.Fprintf(w, "\nUse \"%s --help\" for more information.\n", cmd.CommandPath())
	return nil
}

// printFlagsTo prints flag usages with color formatting to the specified writer
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	// Find maximum flag length for alignment
	maxFlagLen := 28
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flagPart := strings.TrimSpace(strings.SplitN(trimmed, "  ", 2)[0])
			if len(flagPart) > maxFlagLen {
				maxFlagLen = len(flagPart)
			}
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")

		if !strings.HasPrefix(trimmed, "-") {
			// Continuation line (description continues)
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", maxFlagLen+4), ui.Info(trimmed))
			continue
		}

		parts := strings.SplitN(trimmed, "  ", 2)
		if len(parts) != 2 {
			fmt.Fprintf(w, "  %s\n", ui.Success(trimmed))
			continue
		}
		flagPart := strings.TrimSpace(parts[0])
		descPart := strings.TrimSpace(parts[1])
		padding := strings.Repeat(" ", maxFlagLen-len(flagPart)+2)
		fmt.Fprintf(w, "  %s%s%s\n", ui.Success(flagPart), padding, descPart)
	}
}

// wrapText wraps text at the specified width while preserving paragraphs
func wrapText(text string, width int) string {
	paragraphs := strings.Split(text, "\n\n")
	wrapped := make([]string, 0, len(paragraphs))

	for _, para := range paragraphs {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		var lines []string
		var current strings.Builder
		for _, word := range words {
			if current.Len() > 0 && current.Len()+1+len(word) > width {
				lines = append(lines, current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(word)
		}
		if current.Len() > 0 {
			lines = append(lines, current.String())
		}
		wrapped = append(wrapped, strings.Join(lines, "\n"))
	}

	return strings.Join(wrapped, "\n\n")
}
