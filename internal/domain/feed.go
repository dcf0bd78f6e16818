package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind определяет тип ленты. Влияет только на текст терминальных сообщений.
type Kind string

const (
	KindFeed   Kind = "feed"
	KindUser   Kind = "user"
	KindSearch Kind = "search"
	KindTopic  Kind = "topic"
	KindPost   Kind = "post"
	KindReply  Kind = "reply"
	KindPeople Kind = "people"
)

// Outcome - результат классификации ответа страницы.
type Outcome int

const (
	OutcomeHasMore Outcome = iota
	OutcomeEmpty
	OutcomePartialLastPage
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHasMore:
		return "has-more"
	case OutcomeEmpty:
		return "empty"
	case OutcomePartialLastPage:
		return "partial-last-page"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal сообщает, завершает ли исход ленту.
func (o Outcome) Terminal() bool {
	return o != OutcomeHasMore
}

// Item представляет сырую запись элемента ленты в том виде, в каком её вернул сервер.
type Item json.RawMessage

func (it Item) MarshalJSON() ([]byte, error) {
	if len(it) == 0 {
		return []byte("null"), nil
	}
	return it, nil
}

func (it *Item) UnmarshalJSON(data []byte) error {
	*it = append((*it)[0:0], data...)
	return nil
}

// Field возвращает значение поля верхнего уровня как строку.
// Для отсутствующих полей и не-объектов возвращает пустую строку.
func (it Item) Field(name string) string {
	var fields map[string]any
	if err := json.Unmarshal(it, &fields); err != nil {
		return ""
	}
	v, ok := fields[name]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Page - декодированный ответ эндпоинта страницы.
type Page struct {
	Success bool
	Last    bool
	Items   []Item
}

// Post представляет запись, которую отдаёт эталонный эндпоинт страниц.
type Post struct {
	ID      int       `json:"id"`
	Feed    string    `json:"feed"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Link    string    `json:"link"`
	PubDate time.Time `json:"pub_date"`
}
