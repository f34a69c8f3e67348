// Package store provides the key-value blob persistence behind the local
// simulation: each collection is one serialized blob under a fixed key.
package store

import "fmt"

// KV is a flat blob store. Get reports ok=false when the key is absent.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Keys of the persisted blobs.
const (
	KeyEquipments = "mock:equipments"
	KeyRequests   = "mock:requests"
	KeyUsers      = "mock:users"
	KeySession    = "auth_session"
	OTPKeyPrefix  = "otp:"
)

// OTPKey is the blob key of a user's pending one-time code.
func OTPKey(userID int) string {
	return fmt.Sprintf("%s%d", OTPKeyPrefix, userID)
}
