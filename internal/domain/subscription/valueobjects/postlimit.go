package valueobjects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnlimitedPosts is the sentinel the backend uses for posts_limit on paid plans.
const UnlimitedPosts = -1

const unlimitedLabel = "unlimited"

// PostAllowance is either a non-negative count or unlimited. It is used for
// both posts_limit and remaining, which the backend encodes differently:
// posts_limit uses -1, remaining uses the string "unlimited".
type PostAllowance struct {
	count     int
	unlimited bool
}

func Unlimited() PostAllowance {
	return PostAllowance{unlimited: true}
}

// Limited returns a finite allowance; negative counts clamp to zero.
func Limited(n int) PostAllowance {
	if n < 0 {
		n = 0
	}
	return PostAllowance{count: n}
}

// AllowanceFromLimit decodes the posts_limit convention.
func AllowanceFromLimit(limit int) PostAllowance {
	if limit == UnlimitedPosts {
		return Unlimited()
	}
	return Limited(limit)
}

func (a PostAllowance) IsUnlimited() bool {
	return a.unlimited
}

// Count returns the finite count; it is meaningless when IsUnlimited.
func (a PostAllowance) Count() int {
	return a.count
}

func (a PostAllowance) String() string {
	if a.unlimited {
		return "Unlimited"
	}
	return strconv.Itoa(a.count)
}

func (a PostAllowance) MarshalJSON() ([]byte, error) {
	if a.unlimited {
		return json.Marshal(unlimitedLabel)
	}
	return json.Marshal(a.count)
}

// UnmarshalJSON accepts a number (-1 meaning unlimited) or the string "unlimited".
func (a *PostAllowance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != unlimitedLabel {
			return fmt.Errorf("invalid post allowance %q", s)
		}
		*a = Unlimited()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid post allowance: %w", err)
	}
	*a = AllowanceFromLimit(n)
	return nil
}
