package helper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cevaris/ordered_map"
)

// OrderedMapToSqlProperties converts the supplied ordered map to a list of SQL properties of the form
// 'k1' = 'v1', 'k2' = 'v2' preserving insertion order.
// All keys and values are expected to be of type string.
func OrderedMapToSqlProperties(om *ordered_map.OrderedMap) (string, error) {
	b := strings.Builder{}
	iter := om.IterFunc()
	if iter == nil {
		return "", fmt.Errorf("failed to get iterFunc in OrderedMapToSqlProperties()")
	}
	for kv, ok := iter(); ok; kv, ok = iter() {
		k, okKey := kv.Key.(string)
		v, okVal := kv.Value.(string)
		if !okKey || !okVal {
			return "", fmt.Errorf("unexpected non-string property %v = %v", kv.Key, kv.Value)
		}
		b.WriteString(fmt.Sprintf(", %v = %v", SqlQuote(k), SqlQuote(v)))
	}
	return strings.TrimPrefix(b.String(), ", "), nil
}

// SqlQuote wraps s in single quotes, doubling any embedded single quotes.
func SqlQuote(s string) string {
	return "'" + strings.Replace(s, "'", "''", -1) + "'"
}

// BacktickQuote wraps s in backticks as used by Hive DDL for identifiers.
func BacktickQuote(s string) string {
	return "`" + strings.Replace(s, "`", "``", -1) + "`"
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match true, yes, on or 1.
// It returns true if there's a match else false.
func GetTrueFalseStringAsBool(s string) bool {
	re := regexp.MustCompile("^(?i)(true|yes|on|1)$")
	s = strings.TrimSpace(s)
	if re.MatchString(s) {
		return true
	} else {
		return false
	}
}

// SplitRight splits s on the last occurrence of c.
// If c is not found it returns s, "".
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// CollapseRuns replaces each run of characters matched by re with repl.
func CollapseRuns(re *regexp.Regexp, s string, repl string) string {
	return re.ReplaceAllLiteralString(s, repl)
}
