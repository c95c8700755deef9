package in_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	practicehttp "keyloop/internal/modules/practice/adapter/in"
	"keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	progressin "keyloop/internal/modules/progress/port/in"
	sessiondto "keyloop/internal/modules/session/dto"
	sessionin "keyloop/internal/modules/session/port/in"
	storagedto "keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

type fakePractice struct {
	practicein.Usecase
	loaded   []string
	selected []int
	pressed  []string
	settings []dto.SettingsInput
	loadErr  error
}

func (f *fakePractice) Snapshot(context.Context) (dto.Snapshot, error) {
	return dto.Snapshot{Hand: "both", BarsPerSection: 4}, nil
}

func (f *fakePractice) LoadSong(_ context.Context, path string) (dto.Snapshot, error) {
	if f.loadErr != nil {
		return dto.Snapshot{}, f.loadErr
	}
	f.loaded = append(f.loaded, path)
	return dto.Snapshot{Hand: "both"}, nil
}

func (f *fakePractice) SelectSection(_ context.Context, index int) (dto.Snapshot, error) {
	if index > 3 {
		return dto.Snapshot{}, fmt.Errorf("section %d: %w", index, apperrors.ErrInvalidInput)
	}
	f.selected = append(f.selected, index)
	return dto.Snapshot{}, nil
}

func (f *fakePractice) Play(context.Context) (dto.Snapshot, error) {
	return dto.Snapshot{}, apperrors.ErrNoSong
}

func (f *fakePractice) UpdateSettings(_ context.Context, input dto.SettingsInput) (dto.Snapshot, error) {
	f.settings = append(f.settings, input)
	return dto.Snapshot{}, nil
}

func (f *fakePractice) PressKey(_ context.Context, pitch string) error {
	f.pressed = append(f.pressed, pitch)
	return nil
}

type fakeStorage struct {
	storagein.Usecase
	imported [][]byte
}

func (f *fakeStorage) Export(context.Context) ([]byte, error) {
	return []byte(`{"version":1}`), nil
}

func (f *fakeStorage) Import(_ context.Context, data []byte) (storagedto.ImportOutput, error) {
	if !json.Valid(data) {
		return storagedto.ImportOutput{}, apperrors.ErrImport
	}
	f.imported = append(f.imported, data)
	return storagedto.ImportOutput{Namespaces: []string{"preferences"}}, nil
}

type fakeSession struct {
	sessionin.Usecase
}

func (fakeSession) Stats(context.Context) (sessiondto.StatsOutput, error) {
	return sessiondto.StatsOutput{}, fmt.Errorf("load stats: %w", apperrors.ErrPersistence)
}

type fakeProgress struct {
	progressin.Usecase
}

func newServer(t *testing.T) (*httptest.Server, *fakePractice, *fakeStorage) {
	t.Helper()
	practice := &fakePractice{}
	storage := &fakeStorage{}
	handler := practicehttp.NewHTTPHandler(practice, storage, fakeSession{}, fakeProgress{}, []string{"http://localhost:5173"}, logging.Nop())
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, practice, storage
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestStateAndCommands(t *testing.T) {
	t.Parallel()
	server, practice, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/api/state", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d", resp.StatusCode)
	}
	var snap dto.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if snap.Hand != "both" || snap.BarsPerSection != 4 {
		t.Fatalf("unexpected state: %+v", snap)
	}

	if resp := do(t, http.MethodPost, server.URL+"/api/songs", `{"path":"/tmp/song.mid"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d", resp.StatusCode)
	}
	if len(practice.loaded) != 1 || practice.loaded[0] != "/tmp/song.mid" {
		t.Fatalf("unexpected loads: %v", practice.loaded)
	}

	if resp := do(t, http.MethodPut, server.URL+"/api/section/2", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("select status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, server.URL+"/api/section/9", ""); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("out of range select status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, server.URL+"/api/section/two", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("non-numeric select status = %d", resp.StatusCode)
	}
	if len(practice.selected) != 1 || practice.selected[0] != 2 {
		t.Fatalf("unexpected selections: %v", practice.selected)
	}

	if resp := do(t, http.MethodPost, server.URL+"/api/keys/C%234", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("key status = %d", resp.StatusCode)
	}
	if len(practice.pressed) != 1 || practice.pressed[0] != "C#4" {
		t.Fatalf("unexpected key presses: %v", practice.pressed)
	}

	if resp := do(t, http.MethodPut, server.URL+"/api/settings", `{"barsPerSection":2,"isLooping":true}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("settings status = %d", resp.StatusCode)
	}
	got := practice.settings[0]
	if got.BarsPerSection == nil || *got.BarsPerSection != 2 || got.Loop == nil || !*got.Loop || got.Hand != nil {
		t.Fatalf("unexpected settings input: %+v", got)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()
	server, practice, _ := newServer(t)

	if resp := do(t, http.MethodPost, server.URL+"/api/play", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("play without song status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, server.URL+"/api/settings", `{"tempo":2}`); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown field status = %d", resp.StatusCode)
	}
	if len(practice.settings) != 0 {
		t.Fatalf("rejected body reached the controller: %+v", practice.settings)
	}

	practice.loadErr = fmt.Errorf("open: %w", apperrors.ErrNotFound)
	resp := do(t, http.MethodPost, server.URL+"/api/songs", `{"path":"missing.mid"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing file status = %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !strings.Contains(body.Error, "not found") {
		t.Fatalf("unexpected error body: %+v (%v)", body, err)
	}

	if resp := do(t, http.MethodGet, server.URL+"/api/stats", ""); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("stats failure status = %d", resp.StatusCode)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	t.Parallel()
	server, _, storage := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/api/export", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "keyloop-backup.json") {
		t.Fatalf("missing attachment header: %q", resp.Header.Get("Content-Disposition"))
	}

	if resp := do(t, http.MethodPost, server.URL+"/api/import", `{"version":1}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, server.URL+"/api/import", `{not json`); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("malformed import status = %d", resp.StatusCode)
	}
	if len(storage.imported) != 1 {
		t.Fatalf("expected one accepted import, got %d", len(storage.imported))
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	server, _, _ := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/settings", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}
