package repository

import (
	"encoding/base64"
	"time"

	"github.com/goccy/go-json"
)

// recipeCursor points at the last recipe of a page in pub_date order.
type recipeCursor struct {
	PubDate time.Time `json:"p"`
	ID      int64     `json:"i"`
}

// userCursor points at the last user of a page in username order.
type userCursor struct {
	Username string `json:"u"`
	ID       int64  `json:"i"`
}

// encodeCursor encodes a pagination cursor to base64.
func encodeCursor(cursor any) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes a base64 pagination cursor into dst.
func decodeCursor(s string, dst any) error {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return ErrInvalidCursor
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ErrInvalidCursor
	}
	return nil
}
