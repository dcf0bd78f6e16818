package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// PageRefresher перезагружает одну страницу в кэш.
// Используется для внедрения зависимости в воркер.
type PageRefresher interface {
	Refresh(ctx context.Context, url string) error
}

// Worker периодически прогревает кэш страниц для лент в режиме cache-first.
// Управляет расписанием, параллельным выполнением и ожиданием остановки.
type Worker struct {
	refresher  PageRefresher
	urls       []string
	interval   time.Duration
	opTimeout  time.Duration
	log        *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	lastFailed atomic.Int64
}

// New создает воркер прогрева для списка URL страниц.
// opTimeout ограничивает одну перезагрузку сверх таймаута самого запроса.
func New(refresher PageRefresher, urls []string, interval, opTimeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		refresher: refresher,
		urls:      urls,
		interval:  interval,
		opTimeout: opTimeout,
		log:       log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине с контекстом, производным от ctx.
// Неположительный интервал отвергается до запуска горутины.
func (w *Worker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("worker: interval must be positive, got %s", w.interval)
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run()
	return nil
}

// Stop отменяет контекст и ждет завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// RunOnce выполняет один цикл прогрева синхронно и возвращает число неудач.
func (w *Worker) RunOnce(ctx context.Context) int {
	w.ctx = ctx
	w.refreshAll()
	return int(w.lastFailed.Load())
}

func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Cache warmer started",
		slog.String("interval", w.interval.String()),
		slog.Int("page_count", len(w.urls)),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.refreshAll()
	for {
		select {
		case <-ticker.C:
			w.refreshAll()
		case <-w.ctx.Done():
			w.log.Info("Cache warmer stopping")
			return
		}
	}
}

// refreshAll перезагружает все страницы параллельно и считает успешные и неудачные.
func (w *Worker) refreshAll() {
	start := time.Now()
	w.log.Debug("Warm cycle started", slog.Int("pages_to_refresh", len(w.urls)))
	var wg sync.WaitGroup
	var successCount int64
	var errorCount int64
	for _, url := range w.urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if w.ctx.Err() != nil {
				return
			}
			opCtx, opCancel := context.WithTimeout(w.ctx, w.opTimeout)
			defer opCancel()
			if err := w.refresher.Refresh(opCtx, u); err != nil {
				atomic.AddInt64(&errorCount, 1)
				w.log.Error("Page refresh failed",
					slog.String("url", u),
					slog.Any("error", err),
				)
				return
			}
			atomic.AddInt64(&successCount, 1)
		}(url)
	}
	wg.Wait()
	w.lastFailed.Store(errorCount)
	w.log.Info("Warm cycle completed",
		slog.Int("successful", int(successCount)),
		slog.Int("errors", int(errorCount)),
		slog.Int("total", len(w.urls)),
		slog.Duration("duration", time.Since(start)),
	)
}

// URLs возвращает список страниц, которые прогревает воркер.
func (w *Worker) URLs() []string { return w.urls }

// Interval возвращает интервал прогрева.
func (w *Worker) Interval() time.Duration { return w.interval }
