// Package cli wires configuration, logging, the task store and the board
// into the kanban command.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/repository"
	"github.com/tgienger/kanban/internal/ui"
)

var (
	configPath     string
	driverOverride string
)

var rootCmd = &cobra.Command{
	Use:   "kanban",
	Short: "A terminal kanban board",
	Long:  `Kanban keeps short tasks in three columns, To Do, In Progress and Completed, backed by sqlite, Postgres, Azure Table Storage or memory.`,
	Args:  cobra.NoArgs,
	RunE:  runBoard,

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&driverOverride, "driver", "", "store driver: sqlite, postgres, tables or memory")
	rootCmd.AddCommand(listCmd)
}

// SetVersion sets the string printed by --version.
func SetVersion(version, commit, date string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// session holds everything a command needs to talk to the board.
type session struct {
	cfg   *config.Config
	log   *logger.Logger
	repo  *repository.Repository
	close func()
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadWithPath(configPath, config.WithDriver(driverOverride))
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)

	client, err := OpenStore(ctx, cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Info("Opened task store")

	return &session{
		cfg:  cfg,
		log:  log,
		repo: repository.New(client, log),
		close: func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("Failed to close task store")
			}
			_ = log.Sync()
		},
	}, nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	b := board.New(s.repo, board.WithLogger(s.log))
	p := tea.NewProgram(ui.NewApp(b), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
