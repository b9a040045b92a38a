package http

import (
	"net/http"
	"strconv"

	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
)

// ExtractSkipLimit reads the skip/limit query parameters and clamps them to
// the configured pagination bounds.
func ExtractSkipLimit(r *http.Request) (int64, int, error) {
	query := r.URL.Query()

	var skip int64
	if s := query.Get("skip"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid skip parameter: " + s)
		}
		skip = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return config.NormalizeSkip(skip), config.NormalizePaginationLimit(limit), nil
}
