package aggregate

import (
	"sort"
	"strings"

	"github.com/nexahq/nexa-server/internal/domain"
)

// Score - количество токенов запроса, встречающихся подстрокой в
// заголовке (без учета регистра)
func Score(title, query string) int {
	if title == "" {
		return 0
	}
	lower := strings.ToLower(title)
	score := 0
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lower, tok) {
			score++
		}
	}
	return score
}

// Rank сортирует по релевантности (стабильно: при равном счете
// сохраняется порядок провайдеров) и применяет фильтр: если элементов
// со score >= 1 хватает на min(3, всего), нерелевантный хвост
// отбрасывается. При скудных данных не фильтруем вовсе.
func Rank(items []domain.Item, query string) []domain.Item {
	if len(items) == 0 {
		return items
	}

	ranked := make([]domain.Item, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i].Title, query) > Score(ranked[j].Title, query)
	})

	relevant := 0
	for _, it := range ranked {
		if Score(it.Title, query) >= 1 {
			relevant++
		}
	}

	need := 3
	if len(ranked) < need {
		need = len(ranked)
	}

	if relevant >= need {
		filtered := ranked[:0:0]
		for _, it := range ranked {
			if Score(it.Title, query) >= 1 {
				filtered = append(filtered, it)
			}
		}
		return filtered
	}

	return ranked
}

// Merge объединяет выдачи нескольких провайдеров: дедуп + ранжирование +
// обрезка до лимита. Используется в multi-source режиме цепочки.
func Merge(lists [][]domain.Item, query string, limit int) []domain.Item {
	var all []domain.Item
	for _, list := range lists {
		all = append(all, list...)
	}

	merged := Rank(Dedup(all), query)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
