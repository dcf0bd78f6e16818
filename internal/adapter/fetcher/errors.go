package fetcher

import (
	"errors"
	"fmt"
	"time"
)

// ErrBodyTooLarge - тело ответа превышает допустимый размер страницы.
var ErrBodyTooLarge = errors.New("response body too large")

// TimeoutError возвращается, если ответ не пришёл до истечения дедлайна.
type TimeoutError struct {
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.After)
}

// NetworkError - ошибка транспортного уровня (DNS, соединение, отмена родительского контекста).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError - сервер ответил, но не успехом: HTTP-статус вне 2xx
// или success == false в корректном теле.
// Err задан, если ответ со статусом 2xx отвергнут по другой причине.
type ServerError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server error for %s: %v", e.URL, e.Err)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("server reported failure for %s", e.URL)
	}
	return fmt.Sprintf("unexpected status code: %d for url %s", e.StatusCode, e.URL)
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsTimeout сообщает, вызвана ли ошибка истечением дедлайна запроса.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
