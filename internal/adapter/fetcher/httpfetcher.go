package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxBodySize ограничивает размер тела страницы.
const maxBodySize = 8 << 20

var errDeadline = errors.New("fetch deadline exceeded")

// TimeoutFetcher выполняет GET-запрос страницы ленты с жёстким дедлайном.
// На каждый вызов приходится ровно один запрос и один таймер; оба освобождаются
// на любом пути выхода.
type TimeoutFetcher struct {
	client  *http.Client
	timeout time.Duration
	log     *slog.Logger
}

// NewTimeoutFetcher создает TimeoutFetcher. Если client равен nil, используется http.DefaultClient.
func NewTimeoutFetcher(client *http.Client, timeout time.Duration, log *slog.Logger) *TimeoutFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TimeoutFetcher{
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Timeout возвращает настроенный дедлайн запроса.
func (f *TimeoutFetcher) Timeout() time.Duration { return f.timeout }

// Fetch запрашивает url и возвращает тело ответа целиком.
// Истечение дедлайна отменяет запрос и возвращает *TimeoutError,
// ошибки транспорта - *NetworkError, статус вне 2xx - *ServerError.
func (f *TimeoutFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := f.log.With(slog.String("url", url))
	reqCtx, cancel := context.WithTimeoutCause(ctx, f.timeout, errDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(reqCtx, log, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, &ServerError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, f.classify(reqCtx, log, url, err)
	}
	if len(body) > maxBodySize {
		log.Warn("Response body too large", slog.Int("limit", maxBodySize))
		return nil, &ServerError{URL: url, StatusCode: resp.StatusCode, Err: ErrBodyTooLarge}
	}
	log.Debug("Fetched page",
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}

func (f *TimeoutFetcher) classify(reqCtx context.Context, log *slog.Logger, url string, err error) error {
	if errors.Is(context.Cause(reqCtx), errDeadline) {
		log.Warn("Request timed out", slog.Duration("timeout", f.timeout))
		return &TimeoutError{URL: url, After: f.timeout}
	}
	log.Warn("HTTP request failed", slog.Any("error", err))
	if ctxErr := reqCtx.Err(); ctxErr != nil {
		return &NetworkError{URL: url, Err: ctxErr}
	}
	return &NetworkError{URL: url, Err: err}
}
