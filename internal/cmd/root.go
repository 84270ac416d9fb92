// Package cmd implements the tt command-line interface.
package cmd

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"tasktree/internal/config"
	"tasktree/internal/configservice"
	"tasktree/internal/idgen"
	"tasktree/internal/logging"
	"tasktree/internal/storage/filesystem"
)

// version is overridden at build time with -ldflags "-X tasktree/internal/cmd.version=...".
var version = "dev"

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	Path       string
	JSONOutput bool
	Verbose    bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app:        app,
		Out:        app.Out,
		Err:        app.Err,
		JSONOutput: app.JSON,
	}
}

func (p *AppProvider) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *AppProvider) errOut() io.Writer {
	if p.Err == nil {
		return os.Stderr
	}
	return p.Err
}

func (p *AppProvider) init() (*App, error) {
	paths, err := configservice.ResolvePaths(p.Path)
	if err != nil {
		return nil, err
	}
	cfg, err := configservice.OpenStore(paths)
	if err != nil {
		return nil, err
	}

	logger := logging.New(p.errOut(), logging.Options{
		Level:   config.String(cfg, config.KeyLogLevel),
		Format:  config.String(cfg, config.KeyLogFormat),
		Verbose: p.Verbose,
		Prefix:  "tt",
	})
	stateFile := paths.StateFile(cfg)
	logger.Debug("resolved paths", "dir", paths.ConfigDir, "state", stateFile)

	out := p.out()
	return &App{
		Store:  filesystem.New(stateFile, filesystem.WithLogger(logger)),
		Config: cfg,
		Paths:  paths,
		Logger: logger,
		Out:    out,
		Err:    p.errOut(),
		JSON:   p.JSONOutput,
		Color:  colorEnabled(config.String(cfg, config.KeyOutputColor), out),
		Now:    idgen.Now,
	}, nil
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tt",
		Short: "A hierarchical task list that lives in your repo",
		Long: `tasktree tracks work as epics, tasks and subtasks in a single JSON
document (.tasktree/tasks.json), so the plan can be reviewed and diffed
alongside the code it describes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", config.EnvBool(config.EnvJSON), "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&provider.Path, "path", "", "Path to repo or .tasktree directory (default: search from cwd)")
	rootCmd.PersistentFlags().BoolVarP(&provider.Verbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newAddCmd(provider))
	rootCmd.AddCommand(newUpdateCmd(provider))
	rootCmd.AddCommand(newStartCmd(provider))
	rootCmd.AddCommand(newBlockCmd(provider))
	rootCmd.AddCommand(newDoneCmd(provider))
	rootCmd.AddCommand(newRmCmd(provider))
	rootCmd.AddCommand(newListCmd(provider))
	rootCmd.AddCommand(newShowCmd(provider))
	rootCmd.AddCommand(newNextCmd(provider))
	rootCmd.AddCommand(newContextCmd(provider))
	rootCmd.AddCommand(newLintCmd(provider))
	rootCmd.AddCommand(newValidateCmd(provider))
	rootCmd.AddCommand(newTreeCmd(provider))
	rootCmd.AddCommand(newExportCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))

	return rootCmd
}
