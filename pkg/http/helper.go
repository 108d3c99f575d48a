package http

import (
	"net/http"
	"strconv"

	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
)

const (
	// Requester identity and role arrive from the auth boundary in front of
	// this service; the core never interprets tokens itself.
	HeaderRequesterID = "X-Requester-ID"
	HeaderPrivileged  = "X-Privileged"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

func ExtractRequester(r *http.Request) (id string, privileged bool) {
	return r.Header.Get(HeaderRequesterID), r.Header.Get(HeaderPrivileged) == "true"
}
