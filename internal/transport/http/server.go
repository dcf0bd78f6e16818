package http

import (
	"log/slog"
	"net/http"
)

// NewServer создает и настраивает HTTP-сервер с роутингом и middleware.
// Регистрирует эндпоинты страниц лент, проверки состояния и метрик.
// Добавляет middleware для логирования и CORS.
func NewServer(log *slog.Logger, h *Handler, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/feeds/{name}", h.getFeedPage)
	mux.HandleFunc("/api/health", h.healthCheck)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = corsMiddleware()(handler)
	return handler
}
