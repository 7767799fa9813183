package clientdata

import "time"

// TTL constants for cached data types. These are added to time.Now() when
// storing to calculate expires_at.
const (
	// TTLQuote bounds how long a spot price may satisfy a simulation
	// request without a fresh provider round trip.
	TTLQuote = 10 * time.Minute
)
