package router

import "time"

// purgeInterval is how often idle rate limiter buckets are dropped.
const purgeInterval = 5 * time.Minute
