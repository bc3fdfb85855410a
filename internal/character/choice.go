package character

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxChoices Discord补全候选数上限
const MaxChoices = 25

// Fold 大小写折叠，用于不区分大小写的部分匹配
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Matches 任一字段包含查询串即匹配，空查询总是匹配
func Matches(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// FilterChoices 按标签或值过滤，最多返回 limit 条
func FilterChoices(choices []Choice, query string, limit int) []Choice {
	if limit <= 0 || limit > MaxChoices {
		limit = MaxChoices
	}
	filtered := make([]Choice, 0, limit)
	for _, c := range choices {
		if !Matches(query, c.Label, c.Value) {
			continue
		}
		filtered = append(filtered, c)
		if len(filtered) == limit {
			break
		}
	}
	return filtered
}
