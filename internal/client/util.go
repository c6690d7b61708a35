package client

import "strings"

// isUniqueViolation matches the unique constraint errors of the sqlite and
// mysql drivers when gorm does not translate them.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
