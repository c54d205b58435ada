package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/ui"
)

type options struct {
	configPath string
	user       string
}

// withApp opens the app for the duration of one command.
func (o *options) withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), o.configPath, o.user)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "taskdeck",
		Short: "taskdeck - personal tasks, subtasks and calendar",
		Long: `taskdeck keeps a personal task list with subtasks, priorities and due dates.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return ui.Run(a.repo, a.cfg)
		}),
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.ResolveConfigPath(), "Path to config.toml")
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "User id (defaults to the config user)")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newDoneCmd(opts))
	root.AddCommand(newDeleteCmd(opts))
	root.AddCommand(newCalendarCmd(opts))
	return root
}

func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
