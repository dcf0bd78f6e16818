package engine

import (
	"context"
	"errors"
	"feedloader/internal/adapter/fetcher"
	"feedloader/internal/adapter/parser"
	"feedloader/internal/domain"
	"feedloader/internal/metrics"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Retriever выдаёт декодированную страницу по полному URL запроса.
type Retriever interface {
	Retrieve(ctx context.Context, url string) (*domain.Page, error)
}

// Options - параметры монтирования одной ленты.
type Options struct {
	// URL - базовый эндпоинт, обязателен.
	URL string
	// StartPage - первая запрашиваемая страница, по умолчанию 1.
	StartPage int
	// Total - заранее известное число элементов. Ноль сразу исчерпывает ленту.
	Total *int
	Kind  domain.Kind
	// CountField добавляет к запросу &<CountField>=<Total>, если Total задан.
	CountField string
	PageSize   int
	Lookahead  int
}

// Engine - движок постраничной подгрузки одной ленты.
// Владеет курсором и защитой; живёт от Mount до Close.
type Engine struct {
	opts       Options
	guard      *Guard
	cursor     *Cursor
	trigger    Trigger
	retriever  Retriever
	reconciler *Reconciler
	sink       Sink
	metrics    *metrics.Metrics
	log        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mount  sync.Once

	// closeMu связывает выдачу разрешения с wg.Add, чтобы Close не гонялся с Approach.
	closeMu sync.Mutex
	closed  bool

	errMu   sync.Mutex
	lastErr error
}

// New создает движок. Сетевые запросы выполняются в контексте, производном от ctx;
// Close отменяет его.
func New(
	ctx context.Context,
	opts Options,
	retriever Retriever,
	renderer Renderer,
	sink Sink,
	m *metrics.Metrics,
	log *slog.Logger,
) (*Engine, error) {
	if opts.URL == "" {
		return nil, errors.New("engine: url is required")
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, fmt.Errorf("engine: invalid url %q: %w", opts.URL, err)
	}
	if opts.StartPage < 1 {
		opts.StartPage = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	if opts.Kind == "" {
		opts.Kind = domain.KindFeed
	}
	seededEmpty := opts.Total != nil && *opts.Total == 0
	engineCtx, cancel := context.WithCancel(ctx)
	return &Engine{
		opts:       opts,
		guard:      NewGuard(seededEmpty),
		cursor:     NewCursor(opts.StartPage, opts.Kind),
		trigger:    Trigger{Lookahead: float64(opts.Lookahead)},
		retriever:  retriever,
		reconciler: NewReconciler(sink, renderer, MessagesFor(opts.Kind)),
		sink:       sink,
		metrics:    m,
		log: log.With(
			slog.String("component", "engine"),
			slog.String("kind", string(opts.Kind)),
			slog.String("url", opts.URL),
		),
		ctx:    engineCtx,
		cancel: cancel,
	}, nil
}

// Mount выполняет начальную синтетическую проверку прокрутки, чтобы короткие
// страницы загрузились без реального скролла. Лента, засеянная нулём элементов,
// сразу получает сообщение о пустом состоянии и не делает запросов.
func (e *Engine) Mount(v Viewport) bool {
	e.mount.Do(func() {
		e.log.Debug("Engine mounted", slog.Int("start_page", e.opts.StartPage))
		if e.guard.Exhausted() {
			e.sink.AppendFragment(MessageFragment("empty", e.reconciler.messages.Empty))
		}
	})
	return e.OnScroll(v)
}

// OnScroll обрабатывает событие прокрутки и запрашивает следующую страницу,
// если пользователь подошёл к концу контента.
func (e *Engine) OnScroll(v Viewport) bool {
	if !e.trigger.NearEnd(v) {
		return false
	}
	return e.Approach()
}

// Approach - явное событие приближения к концу контента.
// Если защита не выдаёт разрешения, событие игнорируется и возвращается false.
// Иначе курсор сдвигается, в Sink сразу дописывается плейсхолдер, а запрос
// выполняется в отдельной горутине.
func (e *Engine) Approach() bool {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed || e.ctx.Err() != nil || !e.guard.Acquire() {
		e.metrics.RecordDenied(string(e.opts.Kind))
		return false
	}
	pageNum := e.cursor.Next()
	pageURL := e.pageURL(pageNum)
	e.sink.AppendPlaceholder()
	e.log.Debug("Fetch granted", slog.Int("page", pageNum))
	e.wg.Add(1)
	go e.load(pageNum, pageURL)
	return true
}

func (e *Engine) load(pageNum int, pageURL string) {
	defer e.wg.Done()
	start := time.Now()
	log := e.log.With(slog.Int("page", pageNum))

	page, err := e.retriever.Retrieve(e.ctx, pageURL)
	outcome := domain.OutcomeError
	if err == nil {
		outcome = Classify(page, pageNum, e.opts.PageSize)
		if outcome == domain.OutcomeError {
			err = &fetcher.ServerError{URL: pageURL}
		}
	}
	duration := time.Since(start)

	if err != nil {
		e.setErr(err)
		log.Error("Page fetch failed",
			slog.String("error_kind", ErrorKind(err)),
			slog.Any("error", err),
			slog.Duration("duration", duration),
		)
	} else {
		log.Info("Page loaded",
			slog.String("outcome", outcome.String()),
			slog.Int("items", len(page.Items)),
			slog.Duration("duration", duration),
		)
	}

	e.reconciler.Reconcile(outcome, page)
	e.metrics.RecordFetch(string(e.opts.Kind), outcome.String(), duration)
	e.guard.Release(outcome)
}

func (e *Engine) pageURL(pageNum int) string {
	return PageURL(e.opts.URL, pageNum, e.opts.CountField, e.opts.Total)
}

// PageURL строит адрес запроса страницы: base?page=N[&countField=total].
// Если base уже содержит query, параметры дописываются через &.
func PageURL(base string, pageNum int, countField string, total *int) string {
	var b strings.Builder
	b.WriteString(base)
	if strings.Contains(base, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(pageNum))
	if countField != "" && total != nil {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(countField))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(*total))
	}
	return b.String()
}

// Wait блокируется до завершения текущего цикла загрузки, если он есть.
func (e *Engine) Wait() { e.wg.Wait() }

// Close отменяет выполняющийся запрос и ждёт завершения цикла.
// После Close движок больше не выдаёт разрешений.
func (e *Engine) Close() {
	e.closeMu.Lock()
	e.closed = true
	e.closeMu.Unlock()
	e.cancel()
	e.wg.Wait()
	e.log.Debug("Engine unmounted", slog.String("state", e.guard.State().String()))
}

func (e *Engine) State() State { return e.guard.State() }

func (e *Engine) Exhausted() bool { return e.guard.Exhausted() }

// NextPage возвращает номер страницы, которую запросит следующий цикл.
func (e *Engine) NextPage() int { return e.cursor.Page() }

// Err возвращает ошибку, которая перевела ленту в исчерпанное состояние.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.lastErr
}

func (e *Engine) setErr(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	e.lastErr = err
}

// ErrorKind относит ошибку загрузки к одной из категорий: timeout, network, server, decode.
func ErrorKind(err error) string {
	var (
		timeoutErr *fetcher.TimeoutError
		networkErr *fetcher.NetworkError
		serverErr  *fetcher.ServerError
		decodeErr  *parser.DecodeError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &networkErr):
		return "network"
	case errors.As(err, &serverErr):
		return "server"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "unknown"
	}
}
