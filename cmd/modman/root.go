package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/mrkline/modman/internal/version"
	"github.com/mrkline/modman/pkg/config"
	"github.com/mrkline/modman/pkg/logging"
)

var (
	verbosity        int
	defaultVerbosity int
	dryRun           bool
	workerCount      int

	rootCmd = &cobra.Command{
		Use:   "modman",
		Short: "A content-hashed mod activation manager",
		Long: `modman installs collections of replacement files ("mods") into a target
directory tree and can later undo those installations, restoring the
original files. It tracks the content of every file it touches by
cryptographic digest, so an external update of the target tree is detected
rather than silently clobbered, and interrupted installs can be recovered.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbosity == 0 {
				verbosity = defaultVerbosity
			}
			logging.SetupLogger(verbosity)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v, -vv, -vvv)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(listCmd)

	updateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what update would rebase, without mutating anything")
}

// run executes the CLI and returns the process exit code.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defaultVerbosity = cfg.Verbosity
	workerCount = cfg.WorkerCount

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version.Version)); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("modman version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate shell completion script",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			_ = cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			_ = cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
	},
}

var manCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man page",
	RunE: func(cmd *cobra.Command, args []string) error {
		header := &doc.GenManHeader{Title: "MODMAN", Section: "1"}
		return doc.GenManTree(rootCmd, header, "/tmp")
	},
}
