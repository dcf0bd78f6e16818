package render

import (
	"bytes"
	"errors"
	"feedloader/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Default(t *testing.T) {
	r, err := NewTemplateRenderer("")
	require.NoError(t, err)

	out := r.Render(domain.Item(`{"title": "Hello <world>", "content": "body", "link": "https://example.com/1"}`))

	assert.Equal(t,
		`<article class="feed-item"><h3>Hello &lt;world&gt;</h3><p>body</p><a href="https://example.com/1">read</a></article>`,
		out)
}

func TestTemplateRenderer_MissingFields(t *testing.T) {
	r, err := NewTemplateRenderer("")
	require.NoError(t, err)

	assert.Equal(t, `<article class="feed-item"><h3>only title</h3></article>`,
		r.Render(domain.Item(`{"title": "only title"}`)))
}

func TestTemplateRenderer_NonObjectFallsBack(t *testing.T) {
	r, err := NewTemplateRenderer("")
	require.NoError(t, err)

	assert.Equal(t, `<pre>&#34;just a string&#34;</pre>`, r.Render(domain.Item(`"just a string"`)))
}

func TestTemplateRenderer_Custom(t *testing.T) {
	r, err := NewTemplateRenderer(`{{.name}} (@{{.handle}})`)
	require.NoError(t, err)
	assert.Equal(t, "Ann (@ann)", r.Render(domain.Item(`{"name": "Ann", "handle": "ann"}`)))

	_, err = NewTemplateRenderer(`{{.name`)
	assert.Error(t, err)
}

func TestMemorySink_RecordsEvents(t *testing.T) {
	s := NewMemorySink()
	s.AppendPlaceholder()
	assert.True(t, s.HasPlaceholder())
	s.RemovePlaceholder()
	s.AppendFragment("a")
	s.AppendFragment("b")

	assert.False(t, s.HasPlaceholder())
	assert.Equal(t, []string{"a", "b"}, s.Fragments())
	assert.Equal(t, []string{"placeholder", "remove-placeholder", "a", "b"}, s.Events())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriterSink(t *testing.T) {
	var out, status bytes.Buffer
	s := NewWriterSink(&out, &status)
	s.AppendPlaceholder()
	s.RemovePlaceholder()
	s.AppendFragment("first")
	s.AppendFragment("second")

	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Equal(t, "loading...\n", status.String())
	assert.NoError(t, s.Err())

	broken := NewWriterSink(failingWriter{}, nil)
	broken.AppendPlaceholder()
	broken.AppendFragment("x")
	assert.EqualError(t, broken.Err(), "closed pipe")
}
