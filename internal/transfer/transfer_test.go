package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trirule/internal/api"
	"trirule/internal/notify"
)

type fakeClient struct {
	result    api.ImportResult
	importErr error
	exportErr error
	payload   string
	gotName   string
	gotBody   []byte
}

func (f *fakeClient) Import(ctx context.Context, filename string, file io.Reader) (api.ImportResult, error) {
	f.gotName = filename
	f.gotBody, _ = io.ReadAll(file)
	if f.importErr != nil {
		return api.ImportResult{}, f.importErr
	}
	return f.result, nil
}

func (f *fakeClient) Export(ctx context.Context, w io.Writer) (int64, error) {
	if f.exportErr != nil {
		return 0, f.exportErr
	}
	n, err := io.WriteString(w, f.payload)
	return int64(n), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportFullSuccessRefetches(t *testing.T) {
	client := &fakeClient{result: api.ImportResult{SuccessCount: 5}}
	rec := &notify.Recorder{}
	refetched := false
	w := NewWorkflow(client, rec, func(ctx context.Context) error {
		refetched = true
		return nil
	}, nil)

	path := writeTemp(t, "data.xlsx", "spreadsheet-bytes")
	result, err := w.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.SuccessCount != 5 || result.ErrorCount != 0 {
		t.Fatalf("result: %+v", result)
	}
	if !refetched {
		t.Fatal("expected the transaction list to be refetched")
	}
	if client.gotName != "data.xlsx" {
		t.Fatalf("filename: %q", client.gotName)
	}
	if string(client.gotBody) != "spreadsheet-bytes" {
		t.Fatalf("body: %q", client.gotBody)
	}
	if rec.Count(notify.Success) != 1 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
	if got := w.ImportPhase(); got != PhaseDone {
		t.Fatalf("phase: %s", got)
	}
}

func TestImportPartialSuccessSkipsRefetch(t *testing.T) {
	client := &fakeClient{result: api.ImportResult{SuccessCount: 3, ErrorCount: 2}}
	rec := &notify.Recorder{}
	refetched := false
	w := NewWorkflow(client, rec, func(ctx context.Context) error {
		refetched = true
		return nil
	}, nil)

	path := writeTemp(t, "data.csv", "rows")
	result, err := w.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.SuccessCount != 3 || result.ErrorCount != 2 {
		t.Fatalf("result: %+v", result)
	}
	if refetched {
		t.Fatal("partial import must not refetch")
	}
	if rec.Count(notify.Warning) != 1 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
	msg := rec.Notifications[0].Message
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "2") {
		t.Fatalf("warning should carry both counts: %q", msg)
	}
}

func TestImportValidation(t *testing.T) {
	client := &fakeClient{}
	rec := &notify.Recorder{}
	w := NewWorkflow(client, rec, nil, nil)

	if _, err := w.Import(context.Background(), ""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("empty path: %v", err)
	}
	if _, err := w.Import(context.Background(), "/tmp/data.pdf"); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("bad extension: %v", err)
	}
	if rec.Count(notify.Warning) != 2 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
	if got := w.ImportPhase(); got != PhaseIdle {
		t.Fatalf("phase should stay idle, got %s", got)
	}
}

func TestImportBackendError(t *testing.T) {
	client := &fakeClient{importErr: &api.Error{Status: 400, Msg: "invalid file format"}}
	rec := &notify.Recorder{}
	w := NewWorkflow(client, rec, nil, nil)

	path := writeTemp(t, "data.xlsx", "x")
	if _, err := w.Import(context.Background(), path); err == nil {
		t.Fatal("expected error")
	}
	if rec.Count(notify.Error) != 1 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
	if rec.Notifications[0].Message != "invalid file format" {
		t.Fatalf("backend message not surfaced: %q", rec.Notifications[0].Message)
	}
	if got := w.ImportPhase(); got != PhaseFailed {
		t.Fatalf("phase: %s", got)
	}
}

func TestExportWritesDatedFile(t *testing.T) {
	client := &fakeClient{payload: "binary-spreadsheet"}
	rec := &notify.Recorder{}
	w := NewWorkflow(client, rec, nil, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	dir := t.TempDir()
	path, err := w.Export(context.Background(), dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "transactions_2024-03-15.xlsx" {
		t.Fatalf("filename: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "binary-spreadsheet" {
		t.Fatalf("content: %q", data)
	}
	if rec.Count(notify.Success) != 1 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
}

func TestExportFailureRemovesFile(t *testing.T) {
	client := &fakeClient{exportErr: errors.New("backend down")}
	rec := &notify.Recorder{}
	w := NewWorkflow(client, rec, nil, nil)

	dir := t.TempDir()
	if _, err := w.Export(context.Background(), dir); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial export file left behind: %v", entries)
	}
	if rec.Count(notify.Error) != 1 {
		t.Fatalf("notifications: %+v", rec.Notifications)
	}
	if got := w.ExportPhase(); got != PhaseFailed {
		t.Fatalf("phase: %s", got)
	}
}
