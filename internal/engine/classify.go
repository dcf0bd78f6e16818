package engine

import "feedloader/internal/domain"

// DefaultPageSize - порог, ниже которого страница считается последней.
const DefaultPageSize = 10

// Classify определяет исход страницы pageNum.
//
// Страница с last == true и ровно pageSize элементами считается HasMore:
// порог по количеству имеет приоритет над флагом сервера.
func Classify(page *domain.Page, pageNum, pageSize int) domain.Outcome {
	if page == nil || !page.Success {
		return domain.OutcomeError
	}
	n := len(page.Items)
	switch {
	case page.Last && pageNum == 1 && n == 0:
		return domain.OutcomeEmpty
	case page.Last && n < pageSize:
		return domain.OutcomePartialLastPage
	default:
		return domain.OutcomeHasMore
	}
}
