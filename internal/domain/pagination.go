package domain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	DefaultMaxResults = 25
	MaxMaxResults     = 100
)

// PaginationState is the tool-facing pagination request after normalization.
type PaginationState struct {
	MaxResults        int
	ContinuationToken string
}

// Page is one slice of a list operation.
type Page[T any] struct {
	Items             []T    `json:"items"`
	Count             int    `json:"count"`
	HasMore           bool   `json:"hasMore"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// Normalize clamps maxResults into [1, MaxMaxResults]. Zero, negative or
// absent values select DefaultMaxResults.
func Normalize(maxResults int, continuationToken string) PaginationState {
	switch {
	case maxResults <= 0:
		maxResults = DefaultMaxResults
	case maxResults > MaxMaxResults:
		maxResults = MaxMaxResults
	}
	return PaginationState{MaxResults: maxResults, ContinuationToken: continuationToken}
}

// continuation is the decoded form of a continuation token.
type continuation struct {
	Offset   int    `json:"o"`
	PageSize int    `json:"n"`
	Cursor   string `json:"c,omitempty"`
}

// EncodeToken serializes an offset, page size and optional upstream cursor
// into an opaque token.
func EncodeToken(offset, pageSize int, cursor string) string {
	data, _ := json.Marshal(continuation{Offset: offset, PageSize: pageSize, Cursor: cursor})
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeToken parses a token produced by EncodeToken. An empty token decodes
// to the start of the collection.
func DecodeToken(token string) (offset, pageSize int, cursor string, err error) {
	if token == "" {
		return 0, 0, "", nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, 0, "", invalidToken(err)
	}
	var c continuation
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, 0, "", invalidToken(err)
	}
	if c.Offset < 0 || c.PageSize < 0 {
		return 0, 0, "", invalidToken(fmt.Errorf("negative position"))
	}
	return c.Offset, c.PageSize, c.Cursor, nil
}

func invalidToken(cause error) error {
	return &ValidationError{
		Message: "continuationToken is invalid or corrupt. Omit it to start from the beginning",
		Cause:   cause,
	}
}

// SliceByOffset returns the page of items selected by state.
func SliceByOffset[T any](items []T, state PaginationState) (Page[T], error) {
	offset, _, _, err := DecodeToken(state.ContinuationToken)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Items: []T{}}
	if offset >= len(items) {
		return page, nil
	}

	end := offset + state.MaxResults
	if end > len(items) {
		end = len(items)
	}
	page.Items = items[offset:end]
	page.Count = len(page.Items)
	if end < len(items) {
		page.ContinuationToken = EncodeToken(end, state.MaxResults, "")
		page.HasMore = true
	}
	return page, nil
}

// Paginator produces pages for one list operation. Implementations differ
// in how they reach the upstream, not in the tool-facing contract.
type Paginator[T any] interface {
	Paginate(ctx context.Context, state PaginationState) (Page[T], error)
}

// OffsetPaginator fetches the full collection and slices it locally.
type OffsetPaginator[T any] struct {
	Fetch func(ctx context.Context) ([]T, error)
}

// Paginate implements Paginator.
func (p OffsetPaginator[T]) Paginate(ctx context.Context, state PaginationState) (Page[T], error) {
	// Reject a corrupt token before paying for the upstream call.
	if _, _, _, err := DecodeToken(state.ContinuationToken); err != nil {
		return Page[T]{}, err
	}
	items, err := p.Fetch(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	return SliceByOffset(items, state)
}

// CursorPaginator delegates paging to an upstream that issues its own
// continuation cursor. Fetch receives the page size and the upstream cursor
// and returns the page plus the next cursor ("" at the end).
type CursorPaginator[T any] struct {
	Fetch func(ctx context.Context, top int, cursor string) ([]T, string, error)
}

// Paginate implements Paginator.
func (p CursorPaginator[T]) Paginate(ctx context.Context, state PaginationState) (Page[T], error) {
	offset, _, cursor, err := DecodeToken(state.ContinuationToken)
	if err != nil {
		return Page[T]{}, err
	}
	items, next, err := p.Fetch(ctx, state.MaxResults, cursor)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	page := Page[T]{Items: items, Count: len(items)}
	if next != "" && len(items) > 0 {
		page.ContinuationToken = EncodeToken(offset+len(items), state.MaxResults, next)
		page.HasMore = true
	}
	return page, nil
}
