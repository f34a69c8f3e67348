package sim

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

// CodeTTL is how long an issued one-time code stays valid.
const CodeTTL = 10 * time.Minute

type otpRecord struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"` // unix millis
}

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Auth simulates the one-time-code login flow. Codes are "delivered" by
// logging them, the stand-in for a real email/SMS channel.
type Auth struct {
	kv    store.KV
	users *Users
	now   func() time.Time
	code  func() string
}

func NewAuth(kv store.KV, users *Users) *Auth {
	return &Auth{kv: kv, users: users, now: time.Now, code: randomCode}
}

func randomCode() string {
	// Four digits, 1000-9999.
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "0000"
	}
	return fmt.Sprintf("%d", 1000+n.Int64())
}

// IssueCode generates a fresh code for the user, superseding any earlier
// unconsumed one, and returns the validity window.
func (a *Auth) IssueCode(userID int) (time.Duration, error) {
	if _, err := a.users.Get(userID); err != nil {
		return 0, err
	}
	code := a.code()
	rec := otpRecord{Code: code, ExpiresAt: a.now().Add(CodeTTL).UnixMilli()}
	if err := writeBlob(a.kv, store.OTPKey(userID), rec); err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"userId": userID, "code": code, "ttl": CodeTTL}).
		Info("one-time code issued")
	return CodeTTL, nil
}

// VerifyCode consumes the code on success or on expiry; a wrong code leaves
// the record in place for another attempt.
func (a *Auth) VerifyCode(userID int, code string) (Session, error) {
	var rec otpRecord
	ok, err := readBlob(a.kv, store.OTPKey(userID), &rec)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, fmt.Errorf("code for user %d: %w", userID, models.ErrNotFound)
	}
	if a.now().UnixMilli() > rec.ExpiresAt {
		_ = a.kv.Delete(store.OTPKey(userID))
		return Session{}, models.ErrCodeExpired
	}
	if rec.Code != code {
		return Session{}, models.ErrCodeMismatch
	}
	if err := a.kv.Delete(store.OTPKey(userID)); err != nil {
		return Session{}, fmt.Errorf("%w: consume code: %v", models.ErrStorage, err)
	}

	user, err := a.users.Get(userID)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Token: uuid.NewString(), User: user}
	if err := writeBlob(a.kv, store.KeySession, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Current returns the persisted session, if any.
func (a *Auth) Current() (Session, bool, error) {
	var sess Session
	ok, err := readBlob(a.kv, store.KeySession, &sess)
	return sess, ok, err
}

func (a *Auth) Logout() error {
	return a.kv.Delete(store.KeySession)
}
