package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"novelhub/internal/config"
	"novelhub/internal/notify"
)

var (
	cfgFile string
	noColor bool
)

// commands annotated with this run without a configured backend
const standalone = "standalone"

var rootCmd = &cobra.Command{
	Use:   "novelhub",
	Short: "novelhub - read and publish web novels from the terminal",
	Long: `novelhub talks to the NovelHub backend directly. Use it to:
- Browse, search and rank novels
- Read chapters and pick up where you left off
- Vote, review and comment
- Publish novels and chapters as an author

Run "novelhub config init" once to point it at a backend.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[standalone] != "" {
			return nil
		}
		cfg, err := config.LoadCLIConfig(cfgFile)
		if err != nil {
			return err
		}
		if noColor {
			cfg.NoColor = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cli, err = newApp(cmd.Context(), cfg, cmd.OutOrStdout())
		return err
	},
}

// Execute runs the command tree; called once from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, color.RedString("✘ %s", errorText(err)))
		os.Exit(1)
	}
}

// errorText prefers the message meant for users; errors of the command
// itself (flags, files) are printed as they are.
func errorText(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return notify.Message(err)
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultCLIPath(), "config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(configCmd, authCmd, novelCmd, chapterCmd, voteCmd, reviewCmd,
		commentCmd, libraryCmd, progressCmd, profileCmd)
}
