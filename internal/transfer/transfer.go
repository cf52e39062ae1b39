// Package transfer runs the bulk import/export workflows: a spreadsheet
// is delegated to the backend for parsing on import, and fetched as an
// opaque binary blob on export. Both are glue state machines
// (idle → running → done/failed) with a single in-flight guard each.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"trirule/internal/api"
	"trirule/internal/log"
	"trirule/internal/notify"
)

// Phase is the state of one workflow side.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

var (
	ErrBusy            = errors.New("transfer already in progress")
	ErrNoFile          = errors.New("no file selected")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// allowedExtensions mirrors the file picker's extension filter; content
// validation is the backend's job.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// Client is the slice of the API client the workflows need.
type Client interface {
	Import(ctx context.Context, filename string, file io.Reader) (api.ImportResult, error)
	Export(ctx context.Context, w io.Writer) (int64, error)
}

type Workflow struct {
	client   Client
	notifier notify.Notifier
	logger   *slog.Logger
	refetch  func(ctx context.Context) error
	now      func() time.Time

	mu          sync.Mutex
	importPhase Phase
	exportPhase Phase
}

// NewWorkflow wires the transfer workflows. refetch reloads the
// transaction list after a fully successful import; it may be nil.
func NewWorkflow(client Client, notifier notify.Notifier, refetch func(ctx context.Context) error, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		client:      client,
		notifier:    notifier,
		logger:      logger,
		refetch:     refetch,
		now:         time.Now,
		importPhase: PhaseIdle,
		exportPhase: PhaseIdle,
	}
}

func (w *Workflow) ImportPhase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.importPhase
}

func (w *Workflow) ExportPhase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exportPhase
}

// Import uploads the spreadsheet at path. A partial result (some rows
// rejected) keeps the accepted rows, notifies with both counts and does
// NOT refetch; only a fully clean import triggers the list refetch.
func (w *Workflow) Import(ctx context.Context, path string) (api.ImportResult, error) {
	if strings.TrimSpace(path) == "" {
		w.notifier.Notify(notify.Notification{
			Type:    notify.Warning,
			Title:   "Warning",
			Message: "please select a file",
		})
		return api.ImportResult{}, ErrNoFile
	}
	if ext := strings.ToLower(filepath.Ext(path)); !allowedExtensions[ext] {
		w.notifier.Notify(notify.Notification{
			Type:    notify.Warning,
			Title:   "Warning",
			Message: fmt.Sprintf("unsupported file type %q", ext),
		})
		return api.ImportResult{}, ErrUnsupportedFile
	}

	if err := w.begin(&w.importPhase); err != nil {
		return api.ImportResult{}, err
	}

	result, err := w.runImport(ctx, path)
	w.finish(&w.importPhase, err)
	return result, err
}

func (w *Workflow) runImport(ctx context.Context, path string) (api.ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		w.notifyError("could not read the selected file")
		return api.ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()

	result, err := w.client.Import(ctx, filepath.Base(path), file)
	if err != nil {
		w.logger.Error("import failed",
			log.FieldOperation, log.OpImport,
			log.FieldFile, path,
			log.FieldError, err)
		w.notifyError(errorMessage(err, "could not import the file"))
		return api.ImportResult{}, err
	}

	if result.ErrorCount > 0 {
		w.notifier.Notify(notify.Notification{
			Type:    notify.Warning,
			Title:   "Partial import",
			Message: fmt.Sprintf("%d transactions imported, %d errors", result.SuccessCount, result.ErrorCount),
		})
		return result, nil
	}

	w.notifier.Notify(notify.Notification{
		Type:    notify.Success,
		Title:   "Success",
		Message: fmt.Sprintf("%d transactions imported", result.SuccessCount),
	})
	if w.refetch != nil {
		if err := w.refetch(ctx); err != nil {
			w.logger.Warn("post-import refetch failed", log.FieldError, err)
		}
	}
	return result, nil
}

// Export downloads the spreadsheet into dir under a dated filename and
// returns the written path.
func (w *Workflow) Export(ctx context.Context, dir string) (string, error) {
	if err := w.begin(&w.exportPhase); err != nil {
		return "", err
	}

	path, err := w.runExport(ctx, dir)
	w.finish(&w.exportPhase, err)
	return path, err
}

func (w *Workflow) runExport(ctx context.Context, dir string) (string, error) {
	name := fmt.Sprintf("transactions_%s.xlsx", w.now().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		w.notifyError("could not create the export file")
		return "", fmt.Errorf("create export file: %w", err)
	}

	n, err := w.client.Export(ctx, file)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		w.logger.Error("export failed",
			log.FieldOperation, log.OpExport,
			log.FieldFile, path,
			log.FieldError, err)
		w.notifyError(errorMessage(err, "could not export the data"))
		return "", err
	}

	w.logger.Info("export written", log.FieldFile, path, "bytes", n)
	w.notifier.Notify(notify.Notification{
		Type:    notify.Success,
		Title:   "Success",
		Message: fmt.Sprintf("data exported to %s", name),
	})
	return path, nil
}

func (w *Workflow) begin(phase *Phase) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if *phase == PhaseRunning {
		return ErrBusy
	}
	*phase = PhaseRunning
	return nil
}

func (w *Workflow) finish(phase *Phase, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		*phase = PhaseFailed
		return
	}
	*phase = PhaseDone
}

func (w *Workflow) notifyError(msg string) {
	w.notifier.Notify(notify.Notification{
		Type:    notify.Error,
		Title:   "Error",
		Message: msg,
	})
}

// errorMessage prefers the backend's message when it has one.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	return fallback
}
