package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"school-equipment-lending-system/models"
)

// OTPStore holds at most one live one-time code per user. The Redis TTL runs
// past the logical expiry so an expired code can still be told apart from one
// that was never issued; the logical expiry is checked on verification.
type OTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPStore(rdb *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: ttl}
}

type otpRecord struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"exp"`
}

func otpKey(userID int) string { return fmt.Sprintf("lend:otp:%d", userID) }

// Issue stores a fresh code, superseding any earlier one for the user, and
// returns its validity window.
func (s *OTPStore) Issue(ctx context.Context, userID int, code string) (time.Duration, error) {
	rec := otpRecord{Code: code, ExpiresAt: time.Now().Add(s.ttl).Unix()}
	b, _ := json.Marshal(rec)
	// Twice the logical TTL keeps the record around to report "expired".
	if err := s.rdb.Set(ctx, otpKey(userID), b, 2*s.ttl).Err(); err != nil {
		return 0, err
	}
	return s.ttl, nil
}

// Verify is single-use: the record is consumed on success and on expiry. A
// mismatched code leaves it in place.
func (s *OTPStore) Verify(ctx context.Context, userID int, code string) error {
	b, err := s.rdb.Get(ctx, otpKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("code for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return err
	}
	var rec otpRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return fmt.Errorf("%w: decode code record: %v", models.ErrStorage, err)
	}
	if time.Now().Unix() > rec.ExpiresAt {
		_ = s.rdb.Del(ctx, otpKey(userID)).Err()
		return models.ErrCodeExpired
	}
	if rec.Code != code {
		return models.ErrCodeMismatch
	}
	return s.rdb.Del(ctx, otpKey(userID)).Err()
}
