package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/todo/internal/app"
	"github.com/hylla/todo/internal/config"
	"github.com/hylla/todo/internal/console"
	"github.com/hylla/todo/internal/domain"
	"github.com/hylla/todo/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the root command with explicit args and streams.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if args == nil {
		args = []string{}
	}
	root := newRootCommand(stdin, stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds persistent flag values shared by every command.
type rootOptions struct {
	configPath string
	dataPath   string
	backend    string
	appName    string
	ephemeral  bool
	devMode    bool
}

// newRootCommand builds the todo command tree.
func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: "todo", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("TODO_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TODO_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A small modal todo list for the terminal",
		Long:          "todo keeps a single ordered list of tasks. Run without a subcommand to open the terminal UI.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dataPath, "data", "", "path to the task store (json file or sqlite database)")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: json, sqlite or none")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep tasks in memory only (same as --backend none)")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newConsoleCommand(opts, stdin, stdout, stderr),
		newPathsCommand(opts, stdout),
		newExportCommand(opts, stdout, stderr),
		newConfigCommand(opts, stdout),
	)
	return root
}

// runTUI runs the terminal UI over a controller seeded from the selected store.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	sess, err := openSession(opts, stderr)
	if err != nil {
		return err
	}
	defer sess.Close()
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the list is active.
	sess.logger.SetConsoleEnabled(false)

	ctl := app.Open(ctx, sess.store, sess.logger)
	m := tui.NewModel(
		ctl,
		tui.WithContext(ctx),
		tui.WithShowHelp(sess.cfg.UI.ShowHelp),
		tui.WithKeyConfig(toTUIKeyConfig(sess.cfg.Keys)),
	)
	sess.logger.Info("starting tui program loop", "backend", sess.backend, "tasks", ctl.Len())
	if _, err := programFactory(m).Run(); err != nil {
		// Terminal failures are reported but do not change the exit status.
		sess.logger.Error("tui program terminated with error", "err", err)
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return nil
	}
	sess.logger.Info("command flow complete", "command", "tui", "saved", ctl.Quitting() && ctl.Persistent())
	return nil
}

// newConsoleCommand builds the menu-driven console variant.
func newConsoleCommand(opts *rootOptions, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run the line-oriented menu instead of the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(opts, stderr)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctl := app.Open(cmd.Context(), sess.store, sess.logger)
			sess.logger.Info("command flow start", "command", "console", "backend", sess.backend)
			if err := console.New(ctl, stdin, stdout, sess.logger).Run(cmd.Context()); err != nil {
				sess.logger.Error("command flow failed", "command", "console", "err", err)
				return fmt.Errorf("run console: %w", err)
			}
			sess.logger.Info("command flow complete", "command", "console")
			return nil
		},
	}
}

// newPathsCommand prints resolved runtime paths.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			res, err := resolveRuntime(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", res.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", res.configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", res.paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "backend: %s\n", res.backend)
			_, _ = fmt.Fprintf(stdout, "store: %s\n", displayPath(res.storePath))
			return nil
		},
	}
}

// newExportCommand prints or writes the stored task list.
func newExportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored task list as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(opts, stderr)
			if err != nil {
				return err
			}
			defer sess.Close()
			if sess.store == nil {
				return errors.New("export requires a persistent backend")
			}

			tasks, err := sess.store.Load(cmd.Context())
			if err != nil {
				sess.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("load tasks: %w", err)
			}
			encoded, err := encodeTasks(tasks, format)
			if err != nil {
				return err
			}
			if err := writeOutput(outPath, encoded, stdout); err != nil {
				return err
			}
			sess.logger.Info("command flow complete", "command", "export", "format", format, "count", len(tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newConfigCommand prints the effective config and optionally writes it.
func newConfigCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var initFile bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			res, err := resolveRuntime(opts)
			if err != nil {
				return err
			}
			if initFile {
				wrote, err := config.WriteIfMissing(res.configPath, res.cfg)
				if err != nil {
					return fmt.Errorf("write config %q: %w", res.configPath, err)
				}
				if wrote {
					_, _ = fmt.Fprintf(stdout, "wrote %s\n", res.configPath)
				} else {
					_, _ = fmt.Fprintf(stdout, "config already exists: %s\n", res.configPath)
				}
				return nil
			}
			encoded, err := config.Encode(res.cfg)
			if err != nil {
				return err
			}
			_, err = stdout.Write(encoded)
			return err
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the effective config to the config path when no file exists")
	return cmd
}

// encodeTasks renders tasks in the requested export format.
func encodeTasks(tasks []domain.Task, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		encoded, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode tasks json: %w", err)
		}
		return append(encoded, '\n'), nil
	case "yaml", "yml":
		encoded, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("encode tasks yaml: %w", err)
		}
		return encoded, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// writeOutput writes encoded to stdout for "-" or to a file path.
func writeOutput(outPath string, encoded []byte, stdout io.Writer) error {
	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write export to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// toTUIKeyConfig maps persisted key settings into model options.
func toTUIKeyConfig(keys config.KeyConfig) tui.KeyConfig {
	return tui.KeyConfig{
		Quit:   keys.Quit,
		Add:    keys.Add,
		Delete: keys.Delete,
		Toggle: keys.Toggle,
		Yank:   keys.Yank,
		Help:   keys.Help,
	}
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func displayPath(path string) string {
	if path == "" {
		return "(memory)"
	}
	return path
}
