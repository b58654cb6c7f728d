// Package cli implements the pa command-line tool. Output and error writers
// are injectable so commands can be exercised in tests.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmgilman/go/pa"
)

// EnvPrefix prefixes the environment variables bound to global flags, for
// example PA_VERBOSE or PA_LOG_LEVEL.
const EnvPrefix = "PA"

// App holds the dependencies of a CLI invocation.
type App struct {
	Out io.Writer // Standard output
	Err io.Writer // Standard error, also receives logs

	// WorkDir overrides the process working directory when set.
	WorkDir string

	// FSOptions are applied after the CLI's own options when the filesystem
	// handle is created.
	FSOptions []pa.FSOption

	v      *viper.Viper
	fs     *pa.FS
	logger *slog.Logger

	dirColor  *color.Color
	linkColor *color.Color
	execColor *color.Color
}

// New creates an App writing to the process stdout and stderr.
func New() *App {
	return &App{Out: os.Stdout, Err: os.Stderr}
}

// Execute runs the command line in args and returns the process exit code.
func (a *App) Execute(args []string) int {
	root := a.Command()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(a.Err, "pa: %v\n", err)
		if a.logger != nil {
			a.logger.Debug("command failed", "code", platformerrors.GetCode(err))
		}
		return 1
	}
	return 0
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	a.v = viper.New()
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "pa",
		Short:         "Path and file operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "print every command as it runs")
	flags.Bool("show-cmd", false, "print each command once with all its arguments")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		a.infoCommand(),
		a.lsCommand(),
		a.globCommand(),
		a.cpCommand(),
		a.mvCommand(),
		a.rmCommand(),
		a.mkdirCommand(),
		a.touchCommand(),
		a.lnCommand(),
		a.emptyCommand(),
		a.tmpdirCommand(),
	)
	return root
}

// setup resolves the configuration and creates the logger and filesystem
// handle shared by all commands.
func (a *App) setup() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "invalid log level")
	}

	noColor := a.v.GetBool("no-color")
	a.logger = slog.New(tint.NewHandler(a.Err, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))

	a.dirColor = color.New(color.FgBlue, color.Bold)
	a.linkColor = color.New(color.FgCyan)
	a.execColor = color.New(color.FgGreen)
	if noColor {
		for _, c := range []*color.Color{a.dirColor, a.linkColor, a.execColor} {
			c.DisableColor()
		}
	}

	opts := []pa.FSOption{pa.WithOutput(a.Out), pa.WithLogger(a.logger)}
	if a.WorkDir != "" {
		opts = append(opts, pa.WithWorkDir(a.WorkDir))
	}
	f, err := pa.NewFS(append(opts, a.FSOptions...)...)
	if err != nil {
		return err
	}
	a.fs = f
	a.logger.Debug("filesystem ready", "workdir", f.Pwd(), "type", f.Backend().Type())
	return nil
}

// options returns the command options implied by the global flags.
func (a *App) options(extra ...pa.Option) []pa.Option {
	var opts []pa.Option
	if a.v.GetBool("verbose") {
		opts = append(opts, pa.WithVerbose())
	}
	if a.v.GetBool("show-cmd") {
		opts = append(opts, pa.WithShowCmd())
	}
	return append(opts, extra...)
}

// when returns opt if set is true.
func when(set bool, opt pa.Option) []pa.Option {
	if !set {
		return nil
	}
	return []pa.Option{opt}
}
