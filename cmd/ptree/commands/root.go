// Package commands implements the CLI commands for ptree.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/ptree/internal/app"
	"go.trai.ch/ptree/internal/build"
	"go.trai.ch/ptree/internal/core/domain"
)

// CLI represents the command line interface for ptree.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) error
	Clean(ctx context.Context) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "ptree [path]",
		Short: "Print directory trees from an adaptive snapshot cache",
		Long: "ptree prints the directory tree of path (default: the working directory).\n" +
			"Trees are served from a per-root snapshot cache while it is fresh and\n" +
			"rescanned incrementally when only part of it has gone stale.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          c.runScan,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.Flags()
	flags.BoolP("force", "f", false, "Ignore the cache and rescan the scan root")
	flags.BoolP("quiet", "q", false, "Update the cache without printing the tree")
	flags.String("format", "tree", "Output format: tree or json")
	flags.String("color", "auto", "Color mode: auto, always or never")
	flags.IntP("max-depth", "m", domain.Unlimited, "Limit the printed depth below path (-1 prints every level)")
	flags.StringSliceP("skip", "s", nil, "Additional entry names or patterns to skip (comma separated)")
	flags.Bool("hidden", false, "Show entries whose names start with a dot")
	flags.BoolP("admin", "a", false, "Include system directories that are skipped by default")
	flags.IntP("threads", "j", 0, "Number of directories scanned concurrently (default from config)")
	flags.Duration("ttl", 0, "Maximum age of a cached snapshot, e.g. 30m (default from config)")
	flags.String("root", "", "Directory the snapshot is keyed on (default: the volume root)")
	flags.Bool("size", false, "Show file sizes")
	flags.Bool("debug", false, "Print a timing report and debug logs to stderr")
	flags.BoolP("verbose", "v", false, "Enable debug logs")
	flags.String("log-format", "", "Log format: pretty or json (default from config)")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) runScan(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	opts := app.RunOptions{Target: "."}
	if len(args) == 1 {
		opts.Target = args[0]
	}

	opts.Force, _ = flags.GetBool("force")
	opts.Quiet, _ = flags.GetBool("quiet")
	opts.Format, _ = flags.GetString("format")
	opts.Color, _ = flags.GetString("color")
	opts.MaxDepth, _ = flags.GetInt("max-depth")
	opts.Skip, _ = flags.GetStringSlice("skip")
	opts.Hidden, _ = flags.GetBool("hidden")
	opts.Admin, _ = flags.GetBool("admin")
	opts.Threads, _ = flags.GetInt("threads")
	opts.TTL, _ = flags.GetDuration("ttl")
	opts.Root, _ = flags.GetString("root")
	opts.ShowSize, _ = flags.GetBool("size")
	opts.Debug, _ = flags.GetBool("debug")
	opts.Verbose, _ = flags.GetBool("verbose")
	opts.LogFormat, _ = flags.GetString("log-format")

	return c.app.Run(cmd.Context(), opts)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
