package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/config"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/postgresql"
)

// App holds the dependencies shared by every command
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context

	db     *database.DB
	shifts shift.ShiftRepository
	staff  user.StaffDirectory
	leaves leave.LeaveRequestReader
}

var app *App

// annotationNoConfig marks commands that run without environment config.
const annotationNoConfig = "no-config"

func main() {
	rootCmd := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Operator tooling for the shift schedule",
		Long:          `Inspect, export and sanity-check the shift schedule from the last stored snapshot.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoConfig] == "true" {
				return nil
			}
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app == nil {
				return
			}
			if app.db != nil {
				app.db.Close()
			}
			app.logger.Sync()
		},
	}

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(gridCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(policyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads configuration and the logger. The database is opened lazily
// by the commands that need it.
func initApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app = &App{cfg: cfg, logger: log, ctx: context.Background()}
	return nil
}

// loadStore connects to the database and restores the shift snapshot into
// an in-memory store.
func (a *App) loadStore() error {
	db, err := database.NewPostgreSQLDB(a.ctx, a.cfg.DatabaseURL(), a.cfg.Pool())
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	a.db = db

	snapshot, err := postgresql.NewShiftSnapshotRepository(db, a.logger).LoadAll(a.ctx)
	if err != nil {
		return fmt.Errorf("failed to load shift snapshot: %w", err)
	}
	repo := memory.NewShiftRepository()
	if err := repo.ReplaceAll(a.ctx, snapshot); err != nil {
		return err
	}
	a.shifts = repo
	a.staff = postgresql.NewStaffRepository(db)
	a.leaves = postgresql.NewLeaveRequestRepository(db)
	a.logger.Debug("shift snapshot loaded", zap.Int("shift_count", len(snapshot)))
	return nil
}

// operator is the identity commands act as. It sees drafts.
func operator() shift.Actor {
	return shift.Actor{UserID: "shiftctl", Name: "shiftctl", Role: user.RoleScheduler}
}
