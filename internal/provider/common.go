package provider

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const UserAgent = "Mozilla/5.0 (compatible; nexa/1.0)"

// DoRequest выполняет запрос и читает тело целиком
func DoRequest(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	return body, resp.StatusCode, nil
}

// StatusError маппит неуспешный статус на sentinel-ошибку пакета
func StatusError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return fmt.Errorf("%w: status %d", ErrRequestFailed, statusCode)
	}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// StripTags убирает HTML-разметку из сниппетов (поисковики любят подсветку <em>)
func StripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
