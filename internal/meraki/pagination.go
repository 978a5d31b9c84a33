package meraki

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strings"
)

// paginate walks a collection endpoint page by page, following rel=next
// Link headers until none is returned.
func paginate[T any](ctx context.Context, c *Client, first string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		seen := make(map[string]struct{})

		for next := first; next != ""; {
			if _, loop := seen[next]; loop {
				yield(zero, fmt.Errorf("pagination loop at %s", next))
				return
			}
			seen[next] = struct{}{}

			body, link, err := c.get(ctx, next)
			if err != nil {
				yield(zero, err)
				return
			}

			var page []T
			if err := json.Unmarshal(body, &page); err != nil {
				yield(zero, fmt.Errorf("decoding page: %w", err))
				return
			}

			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
			next = link
		}
	}
}

// nextLink extracts the rel=next target from RFC 5988 Link header values,
// resolved against the request URL.
func nextLink(values []string, base *url.URL) string {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			segments := strings.Split(part, ";")
			target := strings.TrimSpace(segments[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}

			for _, param := range segments[1:] {
				key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(key, "rel") {
					continue
				}
				if !hasRel(strings.Trim(value, `"`), "next") {
					continue
				}

				ref, err := url.Parse(target[1 : len(target)-1])
				if err != nil {
					return ""
				}
				if base == nil {
					return ref.String()
				}
				return base.ResolveReference(ref).String()
			}
		}
	}
	return ""
}

func hasRel(rels, want string) bool {
	for _, r := range strings.Fields(rels) {
		if strings.EqualFold(r, want) {
			return true
		}
	}
	return false
}
