package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

// Pagination is bound from query parameters.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Cursor marks the position after the last item returned.
type Cursor struct {
	Offset int `json:"offset"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidPageToken
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil || cursor.Offset < 0 {
		return nil, ErrInvalidPageToken
	}
	return &cursor, nil
}

// Slice returns the window of items addressed by p. Items must already be in
// their final order since the token only records an offset.
func Slice[T any](items []T, p Pagination) ([]T, PageInfo, error) {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	offset := 0
	if p.PageToken != "" {
		cursor, err := DecodeCursor(p.PageToken)
		if err != nil {
			return nil, PageInfo{}, err
		}
		offset = cursor.Offset
	}
	if offset >= len(items) {
		return []T{}, PageInfo{}, nil
	}

	end := min(offset+size, len(items))
	page := items[offset:end]
	info := PageInfo{HasMore: end < len(items)}
	if info.HasMore {
		token, err := EncodeCursor(Cursor{Offset: end})
		if err != nil {
			return nil, PageInfo{}, err
		}
		info.NextPageToken = token
	}
	return page, info, nil
}
