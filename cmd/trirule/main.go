package main

import (
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trirule/internal/api"
	"trirule/internal/cache"
	"trirule/internal/cli"
	"trirule/internal/log"
	"trirule/internal/notify"
	"trirule/internal/pagination"
	"trirule/internal/rates"
	"trirule/internal/settings"
	"trirule/internal/summary"
	"trirule/internal/transfer"
	"trirule/internal/ui"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout,
		logger.WithComponent(log.ComponentAPI).Logger)
	rateClient := rates.NewClient(cfg.RatesBaseURL, cfg.HTTPTimeout)

	// Workflows push their toasts through this channel; the UI drains it.
	events := make(chan notify.Notification, 16)
	notifier := notify.Func(func(n notify.Notification) {
		select {
		case events <- n:
		default:
			logger.Warn("notification dropped", "title", n.Title, "message", n.Message)
		}
	})

	prefs := settings.NewWorkflow(client, rateClient, notifier,
		logger.WithComponent(log.ComponentSettings).Logger)
	summaries := summary.NewService(client,
		logger.WithComponent(log.ComponentSummary).Logger)
	transfers := transfer.NewWorkflow(client, notifier, nil,
		logger.WithComponent(log.ComponentTransfer).Logger)

	caches := cache.NewManager()
	caches.Register(rateClient)
	caches.Register(summaries)
	caches.StartCleanup(time.Minute)

	snapshot := cli.InitStore(logger, cfg.SnapshotDBPath)

	// A signal cancels ctx, which stops the program; shutdown then runs
	// the cleanup on whichever exit path got there first.
	ctx, shutdown := cli.GracefulShutdown(logger, func() {
		caches.Stop()
		if err := snapshot.Close(); err != nil {
			logger.Warn("snapshot close failed", log.FieldError, err)
		}
	})

	model := ui.NewModel(ui.Deps{
		Client:    client,
		Summaries: summaries,
		Prefs:     prefs,
		Transfers: transfers,
		Snapshot:  snapshot,
		Events:    events,
		Logger:    logger,
		PerPage:   pagination.PerPage(cfg.ViewportHeight, cfg.PageSizeMin, cfg.PageSizeMax),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	shutdown()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("UI exited with error", log.FieldError, err)
		os.Exit(1)
	}
}
