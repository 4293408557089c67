// api/cache/tier.go
package cache

import (
	"fmt"
	"time"
)

// Volatility is the declared data-volatility class of an endpoint. The
// mapping from class to freshness tier is fixed; endpoints declare the class,
// never raw TTLs.
type Volatility string

const (
	Realtime Volatility = "REALTIME"
	Moderate Volatility = "MODERATE"
	Slow     Volatility = "SLOW"
	Static   Volatility = "STATIC"
)

// Tier is a named freshness policy: serve as-is while age <= TTL, serve while
// triggering a background refresh while TTL < age <= TTL+Stale.
type Tier struct {
	Name  string
	TTL   time.Duration
	Stale time.Duration
}

var (
	tierRealtime = Tier{Name: "REALTIME", TTL: 30 * time.Second, Stale: 60 * time.Second}
	tierModerate = Tier{Name: "MODERATE", TTL: 120 * time.Second, Stale: 180 * time.Second}
	tierSlow     = Tier{Name: "SLOW", TTL: 300 * time.Second, Stale: 600 * time.Second}
	tierStatic   = Tier{Name: "STATIC", TTL: 600 * time.Second, Stale: 1200 * time.Second}
)

// SelectTier maps a volatility class to its tier. An unknown class gets the
// REALTIME tier: over-fetching is safe, over-caching is not.
func SelectTier(v Volatility) Tier {
	switch v {
	case Realtime:
		return tierRealtime
	case Moderate:
		return tierModerate
	case Slow:
		return tierSlow
	case Static:
		return tierStatic
	}
	return tierRealtime
}

// TierByName is the inverse of Tier.Name, used when rehydrating stored
// entries. Unknown names degrade to REALTIME like SelectTier.
func TierByName(name string) Tier {
	return SelectTier(Volatility(name))
}

// CacheControl renders the tier as a Cache-Control response header value.
func (t Tier) CacheControl() string {
	return fmt.Sprintf("private, max-age=%d, stale-while-revalidate=%d",
		int(t.TTL.Seconds()), int(t.Stale.Seconds()))
}
