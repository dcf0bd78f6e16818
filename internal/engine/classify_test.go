package engine

import (
	"feedloader/internal/domain"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func itemsN(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, domain.Item(fmt.Sprintf(`{"id":%d}`, i)))
	}
	return items
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		page    *domain.Page
		pageNum int
		want    domain.Outcome
	}{
		{"nil page", nil, 1, domain.OutcomeError},
		{"server failure", &domain.Page{Success: false}, 1, domain.OutcomeError},
		{"server failure ignores other fields", &domain.Page{Success: false, Last: true, Items: itemsN(3)}, 2, domain.OutcomeError},
		{"empty first page", &domain.Page{Success: true, Last: true, Items: itemsN(0)}, 1, domain.OutcomeEmpty},
		{"empty later page", &domain.Page{Success: true, Last: true, Items: itemsN(0)}, 3, domain.OutcomePartialLastPage},
		{"partial last page", &domain.Page{Success: true, Last: true, Items: itemsN(9)}, 1, domain.OutcomePartialLastPage},
		{"full last page counts as has-more", &domain.Page{Success: true, Last: true, Items: itemsN(10)}, 2, domain.OutcomeHasMore},
		{"full page", &domain.Page{Success: true, Last: false, Items: itemsN(10)}, 1, domain.OutcomeHasMore},
		{"short page not last", &domain.Page{Success: true, Last: false, Items: itemsN(3)}, 1, domain.OutcomeHasMore},
		{"empty page not last", &domain.Page{Success: true, Last: false, Items: itemsN(0)}, 1, domain.OutcomeHasMore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.page, tt.pageNum, 10))
		})
	}
}
