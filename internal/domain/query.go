package domain

import "strings"

const (
	MaxQueryLength = 500
	DefaultLimit   = 10
	MaxLimit       = 50
)

type SearchQuery struct {
	Text  string
	Limit int
}

func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}

	if len(q.Text) > MaxQueryLength {
		return ErrQueryTooLong
	}

	if q.Limit < 0 {
		return ErrInvalidLimit
	}

	return nil
}

// Sanitize нормализует запрос и зажимает лимит в допустимые рамки
func (q *SearchQuery) Sanitize() {
	q.Text = strings.Join(strings.Fields(q.Text), " ")
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// SearchResponse - внешний конверт: список + опциональная заметка.
// Note не ошибка: "провайдер не настроен", "показан trending fallback" и т.п.
type SearchResponse struct {
	Items []Item `json:"items"`
	Note  string `json:"note,omitempty"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
	Sources []Item `json:"sources"`
	Note    string `json:"note,omitempty"`
}

// FactCheckQuery: источники либо переданы готовыми в Context, либо
// дотягиваются поиском по Query. Пустой Claim берется из Query.
type FactCheckQuery struct {
	Claim   string
	Query   string
	Context []Item
}

type FactCheckResponse struct {
	Verdict string `json:"verdict"`
	Sources []Item `json:"sources"`
	Note    string `json:"note,omitempty"`
}

type CohostResponse struct {
	Answer  string `json:"answer"`
	Sources []Item `json:"sources"`
	Note    string `json:"note,omitempty"`
}
