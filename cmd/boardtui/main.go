// Package main runs the board in a terminal.
//
// It reads the same settings as the dashboard server (.env and environment),
// so it edits the same board storage. When DATABASE_URL is set the tutor list
// feeds the assignee suggestions.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"tutor-dashboard/board"
	"tutor-dashboard/config"
	"tutor-dashboard/domain"
	"tutor-dashboard/storage"
	"tutor-dashboard/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	// The terminal belongs to bubbletea; keep store warnings out of it.
	logger := log.New()
	logger.SetLevel(log.ErrorLevel)
	if cfg.Debug {
		f, err := tea.LogToFile("boardtui.log", "boardtui")
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	kv, closeKV, err := storage.OpenBoardKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	store := board.New(kv,
		board.WithLogger(logger),
		board.WithKeys(board.Keys{Tasks: cfg.TasksKey, Schedules: cfg.SchedulesKey}),
	)
	if err := store.Load(ctx); err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(store, loadTutors(ctx, cfg, logger)), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func loadTutors(ctx context.Context, cfg *config.Config, logger *log.Logger) []domain.Tutor {
	if cfg.DatabaseURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Warn("tutors unavailable")
		return nil
	}
	defer db.Close()

	tutors, err := db.Tutors(ctx)
	if err != nil {
		logger.WithError(err).Warn("tutors unavailable")
		return nil
	}
	return tutors
}
