package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level problems with a request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// validator collects field errors and yields nil when there are none.
type validator map[string]string

func (v validator) require(ok bool, field, msg string) {
	if !ok {
		if _, seen := v[field]; !seen {
			v[field] = msg
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// GeofenceError is returned when QR activation is attempted too far away.
type GeofenceError struct {
	Distance int // meters, rounded
	Limit    int // meters
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("식당에서 %dm 떨어져 있습니다. %dm 이내로 이동해주세요.", e.Distance, e.Limit)
}
