package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// FetchError reports a failure reaching a data source. Source is "inventory",
// "organizations" or "catalog"; OrganizationID is empty for global sources.
type FetchError struct {
	Source         string
	OrganizationID string
	Err            error
}

func (e *FetchError) Error() string {
	if e.OrganizationID != "" {
		return fmt.Sprintf("fetching %s for organization %s: %v", e.Source, e.OrganizationID, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err wraps a *FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
