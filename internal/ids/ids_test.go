package ids

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixed = time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

func TestNewRequestID(t *testing.T) {
	id := string(NewRequestID(fixed))
	assert.Regexp(t, regexp.MustCompile(`^WR-\d{13}-[0-9a-z]{6}$`), id)
	assert.Contains(t, id, fmt.Sprintf("%d", fixed.UnixMilli()))
}

func TestNewRouteID(t *testing.T) {
	id := string(NewRouteID(fixed, "2026-09-02"))
	assert.Regexp(t, regexp.MustCompile(`^ROUTE-20260902-\d{13}-[0-9a-z]{4}$`), id)
}

func TestNewAdminRouteID(t *testing.T) {
	id := string(NewAdminRouteID(fixed))
	assert.Regexp(t, regexp.MustCompile(`^RT-\d{13}-[0-9a-z]{6}$`), id)
}

func TestNewBinID(t *testing.T) {
	id := string(NewBinID(fixed))
	assert.Regexp(t, regexp.MustCompile(`^BIN-\d{13}-[A-Z0-9]{4}$`), id)
}

func TestSuffixLengthAndAlphabet(t *testing.T) {
	s := suffix(16, base36)
	assert.Len(t, s, 16)
	for _, c := range s {
		assert.Contains(t, base36, string(c))
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := map[RequestID]bool{}
	for i := 0; i < 200; i++ {
		id := NewRequestID(fixed)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
