package engine

import (
	"feedloader/internal/domain"
	"sync"
)

// Cursor хранит номер следующей страницы и тип ленты.
// Next вызывается только после того, как Guard выдал разрешение.
type Cursor struct {
	mu   sync.Mutex
	page int
	kind domain.Kind
}

func NewCursor(startPage int, kind domain.Kind) *Cursor {
	if startPage < 1 {
		startPage = 1
	}
	return &Cursor{page: startPage, kind: kind}
}

// Next возвращает текущий номер страницы и сдвигает курсор на следующую.
func (c *Cursor) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.page
	c.page++
	return page
}

// Page возвращает номер страницы, которую выдаст следующий вызов Next.
func (c *Cursor) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Cursor) Kind() domain.Kind { return c.kind }
