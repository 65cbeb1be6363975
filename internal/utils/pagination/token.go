package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor is the position of the last item of a page in (entry_date, created_at, id) order.
type Cursor struct {
	EntryDate time.Time
	CreatedAt time.Time
	ID        string
}

// EncodeToken creates an opaque token for the next page.
func EncodeToken(c Cursor) string {
	tokenStr := strings.Join([]string{c.EntryDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.ID}, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	if parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (missing id)")
	}
	return Cursor{EntryDate: entryDate, CreatedAt: createdAt, ID: parts[2]}, nil
}

// After reports whether an item at (entryDate, createdAt, id) sorts after the cursor
// in descending order, i.e. belongs on a later page.
func (c Cursor) After(entryDate, createdAt time.Time, id string) bool {
	if !entryDate.Equal(c.EntryDate) {
		return entryDate.Before(c.EntryDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return id < c.ID
}
