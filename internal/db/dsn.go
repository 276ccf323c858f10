package db

import (
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	passwordRegex = regexp.MustCompile(`(?i)(password=)([^\s&]+)`)
	urlPassRegex  = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a key=value list.
// It trims quotes and whitespace and, for key=value form, collapses spacing and
// defaults sslmode to disable.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	// If it does not look like key=value pairs, return unchanged (driver will error)
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// SQLiteDSN turns a path or file: URI into a DSN with foreign keys enforced.
// File databases also get a busy timeout, WAL and immediate write locks so
// concurrent writers queue instead of failing on lock upgrade.
func SQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	params := []string{}
	if !strings.Contains(dsn, "_foreign_keys=") && !strings.Contains(dsn, "_fk=") {
		params = append(params, "_foreign_keys=1")
	}
	if !memory {
		if !strings.Contains(dsn, "_busy_timeout=") {
			params = append(params, "_busy_timeout=5000")
		}
		if !strings.Contains(dsn, "_journal_mode=") {
			params = append(params, "_journal_mode=WAL")
		}
		if !strings.Contains(dsn, "_txlock=") {
			params = append(params, "_txlock=immediate")
		}
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// MaskDSN hides passwords before a DSN is logged.
func MaskDSN(dsn string) string {
	masked := passwordRegex.ReplaceAllString(dsn, `${1}***`)
	return urlPassRegex.ReplaceAllString(masked, `${1}***${3}`)
}
