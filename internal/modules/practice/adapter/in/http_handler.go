package in

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	progressin "keyloop/internal/modules/progress/port/in"
	sessionin "keyloop/internal/modules/session/port/in"
	storagein "keyloop/internal/modules/storage/port/in"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

const maxBodyBytes = 8 << 20

type HTTPHandler struct {
	practice practicein.Usecase
	storage  storagein.Usecase
	session  sessionin.Usecase
	progress progressin.Usecase
	logger   *zap.Logger
}

// NewHTTPHandler exposes the practice controller as a JSON API for a browser
// front end served from one of origins.
func NewHTTPHandler(practice practicein.Usecase, storage storagein.Usecase, session sessionin.Usecase, progress progressin.Usecase, origins []string, logger *zap.Logger) http.Handler {
	h := &HTTPHandler{practice: practice, storage: storage, session: session, progress: progress, logger: logging.OrNop(logger)}

	router := mux.NewRouter().StrictSlash(true)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.state).Methods(http.MethodGet)
	api.HandleFunc("/songs", h.loadSong).Methods(http.MethodPost)
	api.HandleFunc("/play", h.transport(h.practice.Play)).Methods(http.MethodPost)
	api.HandleFunc("/stop", h.transport(h.practice.Stop)).Methods(http.MethodPost)
	api.HandleFunc("/toggle", h.transport(h.practice.Toggle)).Methods(http.MethodPost)
	api.HandleFunc("/next", h.transport(h.practice.Next)).Methods(http.MethodPost)
	api.HandleFunc("/previous", h.transport(h.practice.Previous)).Methods(http.MethodPost)
	api.HandleFunc("/section/{index:[0-9]+}", h.selectSection).Methods(http.MethodPut)
	api.HandleFunc("/seek", h.seek).Methods(http.MethodPut)
	api.HandleFunc("/settings", h.settings).Methods(http.MethodPut)
	api.HandleFunc("/keys/{pitch}", h.pressKey).Methods(http.MethodPost)
	api.HandleFunc("/export", h.export).Methods(http.MethodGet)
	api.HandleFunc("/import", h.importBackup).Methods(http.MethodPost)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	api.HandleFunc("/recent", h.recent).Methods(http.MethodGet)
	api.HandleFunc("/progress", h.listProgress).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func (h *HTTPHandler) state(w http.ResponseWriter, r *http.Request) {
	snap, err := h.practice.Snapshot(r.Context())
	h.respond(w, snap, err)
}

type loadSongRequest struct {
	Path string `json:"path"`
}

func (h *HTTPHandler) loadSong(w http.ResponseWriter, r *http.Request) {
	var req loadSongRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.practice.LoadSong(r.Context(), req.Path)
	h.respond(w, snap, err)
}

func (h *HTTPHandler) transport(run func(ctx context.Context) (dto.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := run(r.Context())
		h.respond(w, snap, err)
	}
}

func (h *HTTPHandler) selectSection(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		h.fail(w, apperrors.ErrInvalidInput)
		return
	}
	snap, err := h.practice.SelectSection(r.Context(), index)
	h.respond(w, snap, err)
}

type seekRequest struct {
	Position float64 `json:"position"`
}

func (h *HTTPHandler) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.practice.Seek(r.Context(), req.Position)
	h.respond(w, snap, err)
}

func (h *HTTPHandler) settings(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsInput
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.practice.UpdateSettings(r.Context(), req)
	h.respond(w, snap, err)
}

func (h *HTTPHandler) pressKey(w http.ResponseWriter, r *http.Request) {
	if err := h.practice.PressKey(r.Context(), mux.Vars(r)["pitch"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.storage.Export(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="keyloop-backup.json"`)
	_, _ = w.Write(data)
}

func (h *HTTPHandler) importBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, apperrors.ErrImport)
		return
	}
	out, err := h.storage.Import(r.Context(), data)
	h.respond(w, out, err)
}

func (h *HTTPHandler) stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.session.Stats(r.Context())
	h.respond(w, out, err)
}

func (h *HTTPHandler) recent(w http.ResponseWriter, r *http.Request) {
	out, err := h.storage.RecentFiles(r.Context())
	h.respond(w, out, err)
}

func (h *HTTPHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	out, err := h.progress.List(r.Context())
	h.respond(w, out, err)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.fail(w, apperrors.ErrInvalidInput)
		return false
	}
	return true
}

func (h *HTTPHandler) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNoSong):
		return http.StatusConflict
	case apperrors.IsInputError(err), errors.Is(err, apperrors.ErrParse), errors.Is(err, apperrors.ErrImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
