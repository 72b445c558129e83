package redisx

import (
	"fmt"
	"time"
)

const (
	// idem:checkout:{user_id}:{idempotency_key} -> order_id, or "pending" while in flight
	keyIdemCheckout = "idem:checkout:%s:%s"

	// order_status:{order_id} -> {"status", "userId", "companyId", "updatedAt"}
	keyOrderStatus = "order_status:%s"

	// dedup:{service}:{id}, id = event_id
	keyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)

func IdemCheckoutKey(userID, key string) string { return fmt.Sprintf(keyIdemCheckout, userID, key) }
func OrderStatusKey(orderID string) string      { return fmt.Sprintf(keyOrderStatus, orderID) }
func DedupKey(service, id string) string        { return fmt.Sprintf(keyDedup, service, id) }
