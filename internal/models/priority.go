package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPriority is returned when a priority is neither a known rank nor label.
var ErrInvalidPriority = errors.New("invalid priority")

// Priority is the ordered rank of a task. The zero value means "unset" and is
// only meaningful as a filter constraint.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// Priorities lists the valid ranks in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of Low, Medium or High.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityNone:
		return "All"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority accepts a rank ("1".."3") or a label ("low", "Medium", ...).
// The empty string and "all" parse as PriorityNone.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return PriorityNone, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return PriorityNone, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	p := Priority(n)
	if p != PriorityNone && !p.Valid() {
		return PriorityNone, fmt.Errorf("%w: %d", ErrInvalidPriority, n)
	}
	return p, nil
}

// MarshalJSON writes the numeric rank.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

// UnmarshalJSON accepts either the numeric rank or a label string.
func (p *Priority) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = PriorityNone
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParsePriority(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, b)
	}
	if Priority(n) != PriorityNone && !Priority(n).Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, n)
	}
	*p = Priority(n)
	return nil
}
