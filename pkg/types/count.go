package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative integer that travels as text on the wire ("4").
type Count int

// MaxCount caps counts read from the wire so they fit an int on every
// platform.
const MaxCount Count = math.MaxInt32

// ParseCount reads upvote text. Empty, negative or non-numeric text is 0;
// values above MaxCount are MaxCount.
func ParseCount(s string) Count {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	if n >= float64(MaxCount) {
		return MaxCount
	}

	return Count(int(n))
}

func (c Count) String() string {
	return strconv.Itoa(int(c))
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseCount(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("count must be text or number: %w", err)
	}

	*c = ParseCount(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}
