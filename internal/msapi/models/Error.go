package models

import (
	"fmt"
	"strings"
)

// лимит запросов API МойСклад
const ERROR_CODE_RATE_LIMIT = 1049

type ErrorItem struct {
	ErrorText string `json:"error"`
	Code      int    `json:"code"`
	MoreInfo  string `json:"moreInfo,omitempty"`
}

type ErrorMS struct {
	StatusCode int         `json:"-"`
	Errors     []ErrorItem `json:"errors"`
}

func (e *ErrorMS) Error() string {
	var s []string
	for _, item := range e.Errors {
		s = append(s, fmt.Sprintf("%s (code %d)", item.ErrorText, item.Code))
	}
	if len(s) == 0 {
		return fmt.Sprintf("МойСклад API error, status %d", e.StatusCode)
	}
	return fmt.Sprintf("МойСклад API error, status %d: %s", e.StatusCode, strings.Join(s, "; "))
}

// IsRateLimit - превышение лимита запросов, код 1049
func (e *ErrorMS) IsRateLimit() bool {
	for _, item := range e.Errors {
		if item.Code == ERROR_CODE_RATE_LIMIT {
			return true
		}
	}
	return e.StatusCode == 429
}

// IsRateLimitError - ошибка лимита в любом месте цепочки;
// wrap через pkg/errors сохраняет текст, код 1049 остается в сообщении
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), fmt.Sprint(ERROR_CODE_RATE_LIMIT)) ||
		strings.Contains(err.Error(), "status 429")
}
