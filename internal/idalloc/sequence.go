package idalloc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const DefaultWidth = 7

// Sequence describes one namespace of human-readable ids such as JS-0000042.
type Sequence struct {
	Namespace string
	Prefix    string
	Width     int
}

// ID is one allocated value in both of its forms.
type ID struct {
	Seq   int64
	Value string
}

func (id ID) String() string {
	return id.Value
}

func (s Sequence) width() int {
	if s.Width <= 0 {
		return DefaultWidth
	}
	return s.Width
}

func (s Sequence) Format(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.Prefix, s.width(), n)
}

func (s Sequence) ID(n int64) ID {
	return ID{Seq: n, Value: s.Format(n)}
}

// First is the value handed out when the namespace is empty.
func (s Sequence) First() ID {
	return s.ID(1)
}

// Parse reads either a formatted id with this sequence's prefix or a bare
// decimal record number.
func (s Sequence) Parse(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	digits := raw
	if p := s.Prefix + "-"; strings.HasPrefix(raw, p) {
		digits = raw[len(p):]
	}
	if digits == "" {
		return 0, fmt.Errorf("empty sequence value %q", raw)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable sequence value %q", raw)
	}
	if n < 0 {
		return 0, errors.New("negative sequence value")
	}
	return n, nil
}

// Next is the id after the observed maximum.
func (s Sequence) Next(maxObserved int64) ID {
	return s.ID(maxObserved + 1)
}
