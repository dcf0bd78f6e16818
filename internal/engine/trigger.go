package engine

// DefaultLookahead - запас в единицах прокрутки до конца контента.
const DefaultLookahead = 150

// Viewport - снимок положения прокрутки, который присылает хост.
type Viewport struct {
	ScrollTop    float64
	ClientHeight float64
	ScrollHeight float64
}

// Trigger решает, подошёл ли пользователь к концу отрисованного контента.
type Trigger struct {
	Lookahead float64
}

// NearEnd срабатывает, когда ScrollTop > ScrollHeight - ClientHeight - Lookahead.
// Контент короче окна срабатывает сразу.
func (t Trigger) NearEnd(v Viewport) bool {
	margin := v.ScrollHeight - v.ClientHeight - t.Lookahead
	return v.ScrollTop > margin
}
