package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TimeFilterParams holds parsed time filter parameters
type TimeFilterParams struct {
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ParseTimeFilters extracts and validates time filter query parameters from HTTP request
func ParseTimeFilters(r *http.Request) (*TimeFilterParams, error) {
	params := &TimeFilterParams{}

	if str := r.URL.Query().Get("created_after"); str != "" {
		parsed, err := parseTimeParam(str)
		if err != nil {
			return nil, fmt.Errorf("invalid created_after format. Use RFC3339 (e.g., 2025-11-13T10:00:00Z) or YYYY-MM-DD")
		}
		params.CreatedAfter = &parsed
	}

	if str := r.URL.Query().Get("created_before"); str != "" {
		parsed, err := parseTimeParam(str)
		if err != nil {
			return nil, fmt.Errorf("invalid created_before format. Use RFC3339 (e.g., 2025-11-13T10:00:00Z) or YYYY-MM-DD")
		}
		params.CreatedBefore = &parsed
	}

	return params, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}

// ParseBoolParam reads an optional boolean query parameter; absent means nil.
func ParseBoolParam(r *http.Request, name string) (*bool, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(str)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected true or false", name)
	}
	return &v, nil
}
