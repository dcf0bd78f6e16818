package http

import (
	"context"
	"encoding/json"
	"errors"
	"feedloader/internal/usecase"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type pageGetter interface {
	GetPage(ctx context.Context, feed string, page int) (*usecase.PageResponse, error)
}

type Handler struct {
	log        *slog.Logger
	pageGetter pageGetter
}

func NewHandler(log *slog.Logger, getter pageGetter) *Handler {
	return &Handler{
		log:        log,
		pageGetter: getter,
	}
}

// pageEnvelope - ответ в форме {success, data:{last, items}}.
type pageEnvelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    *usecase.PageResponse `json:"data,omitempty"`
}

// getFeedPage - хендлер для эндпоинта GET /api/feeds/{name}?page=N
func (h *Handler) getFeedPage(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getFeedPage"
	feed := r.PathValue("name")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
		slog.String("feed", feed),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			log.Warn("invalid page parameter", slog.String("page", pageStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'page' parameter")
			return
		}
	}

	resp, err := h.pageGetter.GetPage(r.Context(), feed, page)
	if errors.Is(err, usecase.ErrUnknownFeed) {
		log.Warn("unknown feed requested")
		respondWithError(w, http.StatusNotFound, "Feed Not Found")
		return
	}
	if err != nil {
		log.Error("Failed to get page", slog.Int("page", page), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Debug("Page served", slog.Int("page", page), slog.Int("count", len(resp.Items)), slog.Bool("last", resp.Last))
	respondWithJSON(w, http.StatusOK, pageEnvelope{Success: true, Data: resp})
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, pageEnvelope{Success: false, Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return "req-" + time.Now().Format("20060102150405")
}
