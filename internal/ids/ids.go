// Package ids generates the human-readable identifiers persisted by the
// scheduling engine. Formats are part of the stored-state surface and must
// not change. Uniqueness is enforced by the store's primary-key constraint,
// not by a check-then-insert race here.
package ids

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RequestID is a typed waste-request identifier, e.g. WR-1736467200000-k3f9a2.
type RequestID string

// RouteID is a typed route identifier, e.g. ROUTE-20250110-1736467200000-x7q2.
type RouteID string

// BinID is a typed bin identifier, e.g. BIN-1736467200000-AB12.
type BinID string

func suffix(n int, alphabet string) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; fall back to a fixed char rather than panic.
			b[i] = alphabet[0]
			continue
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}

// NewRequestID returns a WR-<epoch millis>-<6-char base36> identifier.
func NewRequestID(now time.Time) RequestID {
	return RequestID(fmt.Sprintf("WR-%d-%s", now.UnixMilli(), suffix(6, base36)))
}

// NewRouteID returns a ROUTE-<yyyymmdd>-<epoch millis>-<4-char base36>
// identifier for routes materialized by the aggregator.
func NewRouteID(now time.Time, date string) RouteID {
	return RouteID(fmt.Sprintf("ROUTE-%s-%d-%s", compactDate(date), now.UnixMilli(), suffix(4, base36)))
}

// NewAdminRouteID returns the RT-<epoch millis>-<6-char base36> variant used
// on the operator path.
func NewAdminRouteID(now time.Time) RouteID {
	return RouteID(fmt.Sprintf("RT-%d-%s", now.UnixMilli(), suffix(6, base36)))
}

// NewBinID returns a BIN-<epoch millis>-<alnum> identifier matching
// ^BIN-\d+-[A-Z0-9]+$.
func NewBinID(now time.Time) BinID {
	return BinID(fmt.Sprintf("BIN-%d-%s", now.UnixMilli(), suffix(4, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")))
}

// compactDate turns YYYY-MM-DD into yyyymmdd; malformed input is passed
// through stripped of dashes.
func compactDate(date string) string {
	out := make([]byte, 0, 8)
	for i := 0; i < len(date); i++ {
		if date[i] != '-' {
			out = append(out, date[i])
		}
	}
	return string(out)
}
