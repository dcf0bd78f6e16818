package render

import (
	"fmt"
	"io"
	"sync"
)

// Placeholder - фрагмент индикатора загрузки.
const Placeholder = `<div class="feed-loading" aria-busy="true"></div>`

// MemorySink накапливает фрагменты в памяти. Безопасен для конкурентного использования.
type MemorySink struct {
	mu          sync.Mutex
	fragments   []string
	placeholder bool
	events      []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) AppendPlaceholder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placeholder = true
	s.events = append(s.events, "placeholder")
}

func (s *MemorySink) RemovePlaceholder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placeholder = false
	s.events = append(s.events, "remove-placeholder")
}

func (s *MemorySink) AppendFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragment)
	s.events = append(s.events, fragment)
}

// Fragments возвращает копию дописанных фрагментов.
func (s *MemorySink) Fragments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fragments...)
}

// Events возвращает всю последовательность операций, включая плейсхолдеры.
func (s *MemorySink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *MemorySink) HasPlaceholder() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeholder
}

// WriterSink пишет каждый фрагмент отдельной строкой в out.
// Плейсхолдер отображается только в status, если он задан.
type WriterSink struct {
	mu     sync.Mutex
	out    io.Writer
	status io.Writer
	err    error
}

func NewWriterSink(out, status io.Writer) *WriterSink {
	return &WriterSink{out: out, status: status}
}

func (s *WriterSink) AppendPlaceholder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != nil {
		fmt.Fprintln(s.status, "loading...")
	}
}

func (s *WriterSink) RemovePlaceholder() {}

func (s *WriterSink) AppendFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintln(s.out, fragment)
}

// Err возвращает первую ошибку записи в out.
func (s *WriterSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
