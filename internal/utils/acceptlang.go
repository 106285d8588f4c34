package utils

import (
	"sort"
	"strconv"
	"strings"
)

// SupportedLocales lists the label languages the server can render. The
// first entry is the default.
var SupportedLocales = []string{"es", "en"}

// DefaultLocale is used when neither the query nor the Accept-Language header
// names a supported language.
const DefaultLocale = "es"

// NormalizeLocale maps a language tag such as "en-US" to a supported base
// language. It reports false when the tag is not supported.
func NormalizeLocale(tag string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(tag))
	if l == "" {
		return "", false
	}
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	for _, s := range SupportedLocales {
		if s == l {
			return l, true
		}
	}
	return "", false
}

// DetermineLocale resolves the label language for a request. An explicit
// query value wins, then the highest weighted Accept-Language entry, then
// DefaultLocale.
func DetermineLocale(queryLang, acceptLang string) string {
	if l, ok := NormalizeLocale(queryLang); ok {
		return l
	}
	type weighted struct {
		lang string
		q    float64
	}
	var cands []weighted
	for _, part := range strings.Split(acceptLang, ",") {
		fields := strings.Split(part, ";")
		lang, ok := NormalizeLocale(fields[0])
		if !ok {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.TrimSpace(k) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		cands = append(cands, weighted{lang: lang, q: q})
	}
	if len(cands) == 0 {
		return DefaultLocale
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
	return cands[0].lang
}
