package redisx

import "time"

const (
	// Cache of one order's status: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Storefront product grid cache, keyed by category id (0 = all).
	KeyProductList = "catalog:products:%d"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLProductList = 1 * time.Minute
	TTLDedup       = 48 * time.Hour
)
