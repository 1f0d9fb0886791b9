package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a backend identifier. The backend emits string UUIDs for most
// resources but numeric ids are accepted too.
type ID string

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset
func (id ID) IsZero() bool {
	return id == ""
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp is a point in time carried as unix seconds on the wire
type Timestamp struct {
	time.Time
}

// Now returns the current time truncated to seconds
func Now() Timestamp {
	return Timestamp{time.Now().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON accepts unix seconds or an RFC 3339 string
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if f == 0 {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.Unix(int64(f), 0)
	return nil
}
