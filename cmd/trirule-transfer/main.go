// trirule-transfer is the headless companion to the TUI: it signs in,
// runs a single import or export, and exits. Useful from cron or shell
// scripts where spinning up the full interface makes no sense.
package main

import (
	"context"
	"flag"
	"os"

	"trirule/internal/api"
	"trirule/internal/cli"
	"trirule/internal/log"
	"trirule/internal/notify"
	"trirule/internal/transfer"
)

func main() {
	importPath := flag.String("import", "", "spreadsheet to upload")
	exportDir := flag.String("export", "", "directory to export into")
	email := flag.String("email", os.Getenv("TRIRULE_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("TRIRULE_PASSWORD"), "account password")
	flag.Parse()

	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if (*importPath == "") == (*exportDir == "") {
		logger.Error("exactly one of -import or -export is required")
		os.Exit(2)
	}
	if *email == "" || *password == "" {
		logger.Error("credentials required via -email/-password or TRIRULE_EMAIL/TRIRULE_PASSWORD")
		os.Exit(2)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout,
		logger.WithComponent(log.ComponentAPI).Logger)

	notifier := notify.Logged(logger.WithComponent(log.ComponentTransfer).Logger, nil)
	transfers := transfer.NewWorkflow(client, notifier, nil,
		logger.WithComponent(log.ComponentTransfer).Logger)

	// A signal cancels the base context and aborts the in-flight call.
	base, shutdown := cli.GracefulShutdown(logger, nil)
	defer shutdown()

	ctx, cancel := context.WithTimeout(base, cfg.HTTPTimeout*4)
	defer cancel()

	if _, err := client.Login(ctx, api.Credentials{Email: *email, Password: *password}); err != nil {
		logger.Error("login failed", log.FieldOperation, log.OpLogin, log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			logger.Warn("logout failed", log.FieldOperation, log.OpLogout, log.FieldError, err)
		}
	}()

	if *importPath != "" {
		result, err := transfers.Import(ctx, *importPath)
		if err != nil {
			logger.Error("import failed",
				log.FieldOperation, log.OpImport,
				log.FieldFile, *importPath,
				log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("import finished",
			"imported", result.SuccessCount,
			"errors", result.ErrorCount)
		if result.ErrorCount > 0 {
			os.Exit(3)
		}
		return
	}

	path, err := transfers.Export(ctx, *exportDir)
	if err != nil {
		logger.Error("export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("export finished", log.FieldFile, path)
}
