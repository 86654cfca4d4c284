package priority

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPriority = errors.New("invalid priority")

// Priority is the 50/30/20 bucket an expense belongs to.
type Priority string

const (
	None    Priority = ""
	Needs   Priority = "needs"
	Wants   Priority = "wants"
	Savings Priority = "savings"
)

// All lists the priorities in the order they are presented (needs, wants, savings).
var All = []Priority{Needs, Wants, Savings}

func (p Priority) IsValid() bool {
	return p == Needs || p == Wants || p == Savings
}

func (p Priority) String() string {
	return string(p)
}

// Parse converts a user supplied value into a Priority. An empty string maps to None.
func Parse(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if p == None || p.IsValid() {
		return p, nil
	}
	return None, fmt.Errorf("%w: %s", ErrInvalidPriority, value)
}
