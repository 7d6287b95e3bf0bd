package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/internal/config"
	"github.com/marcus/lightface/internal/dashboard"
	"github.com/marcus/lightface/internal/repos"
	"github.com/marcus/lightface/internal/workdir"
	"github.com/marcus/lightface/pkg/lightface"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version string
	project workdir.Project
	logFile string
	logOut  io.Closer
)

// errNoTerminal is returned when the dashboard is started without a TTY.
var errNoTerminal = errors.New("the dashboard needs an interactive terminal")

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "lightface",
	Short: "Repository dashboard with modal dialogs",
	Long: `lightface - a terminal repository dashboard.

Pull, remove or change the tracked repository. Destructive operations ask for
confirmation in a modal dialog; failures are reported in an error dialog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOut != nil {
			logOut.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			return errNoTerminal
		}
		return runDashboard(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if arg := firstNonFlagArg(os.Args[1:]); arg != "" && !isCommand(arg) {
			fmt.Fprintf(os.Stderr, "Run 'lightface --help' for the list of commands.\n")
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initProject)
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write JSON logs to this file")
}

func initProject() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
	project = workdir.Resolve(cwd)
}

// getProject returns the project the command runs against
func getProject() workdir.Project {
	return project
}

// setupLogging installs the default logger. Without --log-file logs are
// discarded so they never corrupt the terminal UI.
func setupLogging() error {
	if logFile == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logOut = f
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	return nil
}

// firstNonFlagArg returns the first argument that isn't a flag.
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

func isCommand(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// openService loads the config and opens the repository store.
func openService(p workdir.Project) (*config.Config, *repos.Service, error) {
	cfg, err := config.Load(p)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := repos.Open(cfg.DBPath(p))
	if err != nil {
		return nil, nil, err
	}
	return cfg, repos.NewService(store, cfg.Latency(), slog.Default()), nil
}

func runDashboard(ctx context.Context) error {
	cfg, svc, err := openService(getProject())
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	dialog := cfg.Dialog.Apply(lightface.DefaultConfig())
	if err := dialog.Validate(); err != nil {
		return fmt.Errorf("invalid dialog settings: %w", err)
	}

	m, err := dashboard.New(dashboard.Options{
		Service:       svc,
		Dialog:        dialog,
		NoticeTimeout: cfg.NoticeTimeout(),
		Logger:        slog.Default(),
		Context:       ctx,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	slog.Info("dashboard starting", "version", version, "dir", getProject().Root)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
