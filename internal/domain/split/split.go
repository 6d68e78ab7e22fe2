package split

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

type Share struct {
	Email  string
	Amount int64
}

// Allocation is the result of dividing a total among recipients. Shares
// keep the recipients' input order; the sum of amounts always equals Total.
type Allocation struct {
	Total     int64
	BaseShare int64
	Remainder int64
	Shares    []Share
}

func (a Allocation) Map() map[string]int64 {
	m := make(map[string]int64, len(a.Shares))
	for _, s := range a.Shares {
		m[s.Email] = s.Amount
	}
	return m
}

func (a Allocation) Sum() int64 {
	var sum int64
	for _, s := range a.Shares {
		sum += s.Amount
	}
	return sum
}

// Split is the recorded summary of one division.
type Split struct {
	ID         string
	Allocation Allocation
	CreatedAt  time.Time
}

type Summary struct {
	ID             string
	Total          int64
	RecipientCount int
	CreatedAt      time.Time
}

// Shares renders as a JSON object mapping email to amount. Keys keep the
// recipients' input order, which a plain map cannot.
type Shares []Share

func (s Shares) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, share := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(share.Email)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(share.Amount, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
