package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 50
	maxFeedPage      = 10000
)

var errMissingSince = errors.New("since is required")

// parseFeedOptions clamps page and limit into range. Values that do not
// parse at all, and pages above maxFeedPage, are rejected.
func parseFeedOptions(q url.Values) (domain.FeedOptions, error) {
	opts := domain.FeedOptions{Page: 1, Limit: defaultFeedLimit}

	if s := q.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page > maxFeedPage {
			return opts, fmt.Errorf("invalid page %q", s)
		}
		opts.Page = max(page, 1)
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("invalid limit %q", s)
		}
		opts.Limit = min(max(limit, 1), maxFeedLimit)
	}

	types, err := parseTypes(q)
	if err != nil {
		return opts, err
	}
	opts.Types = types

	since, err := parseSince(q)
	if err != nil && !errors.Is(err, errMissingSince) {
		return opts, err
	}
	opts.Since = since

	return opts, nil
}

// parseTypes accepts both types=a,b and repeated types params. Empty means
// every source.
func parseTypes(q url.Values) ([]domain.Source, error) {
	var types []domain.Source
	for _, raw := range q["types"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part == "" {
				continue
			}
			src := domain.Source(part)
			if !src.Valid() {
				return nil, fmt.Errorf("invalid type %q", part)
			}
			types = append(types, src)
		}
	}
	return types, nil
}

func parseSince(q url.Values) (*time.Time, error) {
	s := q.Get("since")
	if s == "" {
		return nil, errMissingSince
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid since %q, expected RFC3339", s)
	}
	return &t, nil
}
