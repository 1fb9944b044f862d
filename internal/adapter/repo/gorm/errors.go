package gormrepo

import (
	"fmt"
	"strconv"
	"strings"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 40001") || strings.Contains(msg, "could not serialize access")
}

// Amounts are NUMERIC(20,0) columns carried as decimal strings.
func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseAmount(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v, nil
}
