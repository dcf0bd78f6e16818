package engine

import (
	"feedloader/internal/domain"
	"fmt"
	"html"
)

// Sink - поверхность отображения, в которую можно только дописывать.
// Удалять можно только плейсхолдер загрузки.
type Sink interface {
	AppendPlaceholder()
	RemovePlaceholder()
	AppendFragment(fragment string)
}

// Renderer отображает сырую запись в фрагмент. Должен быть чистой функцией.
type Renderer interface {
	Render(item domain.Item) string
}

// RendererFunc позволяет использовать функцию как Renderer.
type RendererFunc func(item domain.Item) string

func (f RendererFunc) Render(item domain.Item) string { return f(item) }

// Reconciler переносит результат классифицированной страницы в Sink.
type Reconciler struct {
	sink     Sink
	renderer Renderer
	messages Messages
}

func NewReconciler(sink Sink, renderer Renderer, messages Messages) *Reconciler {
	return &Reconciler{sink: sink, renderer: renderer, messages: messages}
}

// Reconcile убирает плейсхолдер и дописывает элементы в порядке сервера,
// а для терминальных исходов - соответствующее сообщение.
func (r *Reconciler) Reconcile(outcome domain.Outcome, page *domain.Page) {
	r.sink.RemovePlaceholder()
	switch outcome {
	case domain.OutcomeError:
		r.sink.AppendFragment(MessageFragment("error", ErrorMessage))
		return
	case domain.OutcomeEmpty:
		r.sink.AppendFragment(MessageFragment("empty", r.messages.Empty))
		return
	}
	for _, item := range page.Items {
		r.sink.AppendFragment(r.renderer.Render(item))
	}
	if outcome == domain.OutcomePartialLastPage {
		r.sink.AppendFragment(MessageFragment("end", r.messages.End))
	}
}

// MessageFragment оборачивает текст терминального сообщения во фрагмент.
func MessageFragment(class, text string) string {
	return fmt.Sprintf(`<p class="feed-message feed-message--%s">%s</p>`, class, html.EscapeString(text))
}
