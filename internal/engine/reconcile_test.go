package engine

import (
	"feedloader/internal/domain"
	"feedloader/internal/render"
	"testing"

	"github.com/stretchr/testify/assert"
)

var idRenderer = RendererFunc(func(item domain.Item) string {
	return "item-" + item.Field("id")
})

func TestReconciler_Reconcile(t *testing.T) {
	msgs := MessagesFor(domain.KindTopic)
	tests := []struct {
		name    string
		outcome domain.Outcome
		page    *domain.Page
		want    []string
	}{
		{
			name:    "has more",
			outcome: domain.OutcomeHasMore,
			page:    &domain.Page{Success: true, Items: itemsN(2)},
			want:    []string{"item-1", "item-2"},
		},
		{
			name:    "partial last page",
			outcome: domain.OutcomePartialLastPage,
			page:    &domain.Page{Success: true, Last: true, Items: itemsN(2)},
			want:    []string{"item-1", "item-2", MessageFragment("end", msgs.End)},
		},
		{
			name:    "empty",
			outcome: domain.OutcomeEmpty,
			page:    &domain.Page{Success: true, Last: true},
			want:    []string{MessageFragment("empty", msgs.Empty)},
		},
		{
			name:    "error without page",
			outcome: domain.OutcomeError,
			want:    []string{MessageFragment("error", ErrorMessage)},
		},
		{
			name:    "error ignores items",
			outcome: domain.OutcomeError,
			page:    &domain.Page{Success: false, Items: itemsN(3)},
			want:    []string{MessageFragment("error", ErrorMessage)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := render.NewMemorySink()
			sink.AppendPlaceholder()

			NewReconciler(sink, idRenderer, msgs).Reconcile(tt.outcome, tt.page)

			assert.False(t, sink.HasPlaceholder())
			assert.Equal(t, tt.want, sink.Fragments())
		})
	}
}

func TestMessageFragment_Escapes(t *testing.T) {
	assert.Equal(t,
		`<p class="feed-message feed-message--end">a &lt;b&gt; &amp; c</p>`,
		MessageFragment("end", "a <b> & c"))
}
