package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackbasket/storefront-api/verify"
)

type fakeOTP struct {
	sendErr   error
	checkErr  error
	approved  bool
	sentTo    []string
	checkedTo []string
}

func (f *fakeOTP) SendCode(ctx context.Context, phone string) error {
	f.sentTo = append(f.sentTo, phone)
	return f.sendErr
}

func (f *fakeOTP) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	f.checkedTo = append(f.checkedTo, phone)
	return f.approved, f.checkErr
}

func newSessionFixture(otp *fakeOTP) (*SessionStore, *MemoryKV) {
	kv := NewMemoryKV()
	return newSessionStore(kv, otp), kv
}

func TestRequestCodeNormalizesPhone(t *testing.T) {
	otp := &fakeOTP{}
	store, kv := newSessionFixture(otp)

	require.NoError(t, store.RequestCode(context.Background(), "98765 43210"))

	require.Len(t, otp.sentTo, 1)
	assert.Equal(t, "+919876543210", otp.sentTo[0])
	assert.Equal(t, StateVerifying, store.State())

	phone, ok := kv.Get(keyAuthPhone)
	require.True(t, ok)
	assert.Equal(t, "+919876543210", phone)
}

func TestRequestCodeRejectsBadPhoneBeforeProvider(t *testing.T) {
	otp := &fakeOTP{}
	store, _ := newSessionFixture(otp)

	err := store.RequestCode(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, otp.sentTo)
	assert.Equal(t, StateAnonymous, store.State())
}

func TestRequestCodeMapsRateLimit(t *testing.T) {
	otp := &fakeOTP{sendErr: verify.ErrRateLimited}
	store, _ := newSessionFixture(otp)

	err := store.RequestCode(context.Background(), "9876543210")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, ErrProviderRejected)
}

func TestVerifyCodeIncorrect(t *testing.T) {
	otp := &fakeOTP{approved: false}
	store, _ := newSessionFixture(otp)

	require.NoError(t, store.RequestCode(context.Background(), "9876543210"))
	_, err := store.VerifyCode(context.Background(), "000000")

	assert.ErrorIs(t, err, ErrCodeIncorrect)
	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Equal(t, StateVerifying, store.State())
	assert.Nil(t, store.Current())
}

func TestVerifyCodeWithoutRequest(t *testing.T) {
	otp := &fakeOTP{approved: true}
	store, _ := newSessionFixture(otp)

	_, err := store.VerifyCode(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, otp.checkedTo)
}

func TestVerifyCodeCreatesSession(t *testing.T) {
	otp := &fakeOTP{approved: true}
	store, kv := newSessionFixture(otp)

	require.NoError(t, store.RequestCode(context.Background(), "9876543210"))
	sess, err := store.VerifyCode(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, "+919876543210", sess.Phone)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	raw, ok := kv.Get(keySession)
	require.True(t, ok)
	var persisted Session
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, sess.UserID, persisted.UserID)
}

func TestRestoreValidSession(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Now().UTC()
	sess := Session{
		UserID:    "+919876543210",
		Phone:     "+919876543210",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	data, _ := json.Marshal(sess)
	kv.Set(keySession, string(data))

	store := newSessionStore(kv, &fakeOTP{})
	assert.Equal(t, StateAuthenticated, store.State())
	require.NotNil(t, store.Current())
	assert.Equal(t, "+919876543210", store.Current().Phone)
}

func TestRestorePurgesExpiredSessionButKeepsCart(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Now().UTC()
	sess := Session{
		UserID:    "+919876543210",
		Phone:     "+919876543210",
		CreatedAt: now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	data, _ := json.Marshal(sess)
	kv.Set(keySession, string(data))
	kv.Set(keyAuthPhone, "+919876543210")
	kv.Set(keyCartID, "c42")

	store := newSessionStore(kv, &fakeOTP{})

	assert.Equal(t, StateAnonymous, store.State())
	assert.Nil(t, store.Current())

	_, hasSession := kv.Get(keySession)
	assert.False(t, hasSession)
	_, hasPhone := kv.Get(keyAuthPhone)
	assert.False(t, hasPhone)

	// the cart id survives an expired session; the cart may still be live
	cartID, ok := kv.Get(keyCartID)
	require.True(t, ok)
	assert.Equal(t, "c42", cartID)
}

func TestProviderOutageMapsToServiceUnavailable(t *testing.T) {
	otp := &fakeOTP{checkErr: errors.New("connection refused")}
	store, _ := newSessionFixture(otp)

	require.NoError(t, store.RequestCode(context.Background(), "9876543210"))
	_, err := store.VerifyCode(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestLogoutIsIdempotent(t *testing.T) {
	otp := &fakeOTP{approved: true}
	store, kv := newSessionFixture(otp)

	require.NoError(t, store.RequestCode(context.Background(), "9876543210"))
	_, err := store.VerifyCode(context.Background(), "123456")
	require.NoError(t, err)

	store.Logout()
	store.Logout()

	assert.Equal(t, StateAnonymous, store.State())
	_, hasSession := kv.Get(keySession)
	assert.False(t, hasSession)
}
