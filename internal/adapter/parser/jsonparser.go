package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"feedloader/internal/domain"
	"fmt"
)

// DecodeError - тело ответа не удалось разобрать как страницу ленты.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode page: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

const DefaultItemsField = "items"

// PageDecoder разбирает ответы двух форм:
//
//	{"success": true, "data": {"last": false, "items": [...]}}
//	{"success": true, "<itemsField>": [...], "last": true}
//
// Если флаг last отсутствует, последней считается страница короче pageSize.
type PageDecoder struct {
	itemsField string
	pageSize   int
}

func NewPageDecoder(itemsField string, pageSize int) *PageDecoder {
	if itemsField == "" {
		itemsField = DefaultItemsField
	}
	return &PageDecoder{itemsField: itemsField, pageSize: pageSize}
}

// Decode реализует метод интерфейса usecase.PageDecoder.
func (d *PageDecoder) Decode(body []byte) (*domain.Page, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if top == nil {
		return nil, &DecodeError{Err: errors.New("response is not an object")}
	}
	rawSuccess, ok := top["success"]
	if !ok {
		return nil, &DecodeError{Err: errors.New(`missing "success" field`)}
	}
	var success bool
	if err := json.Unmarshal(rawSuccess, &success); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf(`"success": %w`, err)}
	}
	if !success {
		return &domain.Page{Success: false}, nil
	}

	fields := top
	if rawData, ok := top["data"]; ok && isObject(rawData) {
		var data map[string]json.RawMessage
		if err := json.Unmarshal(rawData, &data); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf(`"data": %w`, err)}
		}
		fields = data
	}

	rawItems, ok := fields[d.itemsField]
	if !ok {
		return nil, &DecodeError{Err: fmt.Errorf("missing %q array", d.itemsField)}
	}
	var items []domain.Item
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%q: %w", d.itemsField, err)}
	}
	if items == nil {
		items = []domain.Item{}
	}

	page := &domain.Page{Success: true, Items: items}
	if rawLast, ok := fields["last"]; ok {
		if err := json.Unmarshal(rawLast, &page.Last); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf(`"last": %w`, err)}
		}
	} else {
		page.Last = len(items) < d.pageSize
	}
	return page, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
