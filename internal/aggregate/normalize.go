package aggregate

import (
	"net/url"
	"sort"
	"strings"

	"github.com/nexahq/nexa-server/internal/domain"
)

// trackingParams - query-параметры, не влияющие на идентичность страницы
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"igshid":  true,
	"mc_cid":  true,
	"mc_eid":  true,
	"msclkid": true,
	"ref":     true,
	"ref_src": true,
}

// NormalizeLink приводит ссылку к канонической форме для дедупликации:
// без трекинговых параметров, фрагмента и хвостового слеша, хост в
// нижнем регистре. Невалидные ссылки возвращаются как есть.
func NormalizeLink(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)

	q := u.Query()
	for key := range q {
		// utm покрывает и голый ?utm=, и все utm_*-вариации
		if trackingParams[key] || strings.HasPrefix(strings.ToLower(key), "utm") {
			q.Del(key)
		}
	}
	u.RawQuery = encodeSorted(q)

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

// encodeSorted - детерминированный порядок параметров, чтобы
// ?a=1&b=2 и ?b=2&a=1 давали один ключ
func encodeSorted(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

// Dedup убирает дубли по нормализованной ссылке, первая запись побеждает.
// Попутно отбрасывает элементы без валидной абсолютной ссылки и
// подставляет заголовок-фолбэк.
func Dedup(items []domain.Item) []domain.Item {
	seen := make(map[string]bool, len(items))
	out := make([]domain.Item, 0, len(items))

	for _, it := range items {
		if it.Validate() != nil {
			continue
		}
		key := NormalizeLink(it.Link)
		if seen[key] {
			continue
		}
		seen[key] = true
		it.EnsureTitle()
		out = append(out, it)
	}

	return out
}
