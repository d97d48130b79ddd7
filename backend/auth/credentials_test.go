package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() (*Authenticator, *Session) {
	s := NewSession(store.NewMemory())
	a := NewAuthenticator(s)
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a, s
}

func TestLoginAcceptsAnyNonEmptyPair(t *testing.T) {
	pairs := []LoginArgs{
		{"alice", "x"},
		{"bob", "wrong-password"},
		{" ", " "},
		{"ünïcødé", "🔑"},
	}
	for _, p := range pairs {
		a, s := newTestAuthenticator()
		u, err := a.Login(context.Background(), p)
		require.NoError(t, err, "login %q", p.Username)
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, p.Username, u.Username)
		assert.Equal(t, PlaceholderPhone, u.Phone)
		assert.Equal(t, "1700000000000", u.ID)
	}
}

func TestLoginRejectsEmptyFields(t *testing.T) {
	for _, p := range []LoginArgs{{"", "x"}, {"alice", ""}, {"", ""}} {
		a, s := newTestAuthenticator()
		_, err := a.Login(context.Background(), p)
		var verr *api.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, MsgFillAllFields, verr.Message)
		assert.False(t, s.IsAuthenticated())
	}
}

func TestSignUpValidation(t *testing.T) {
	testCases := []struct {
		name    string
		args    SignUpArgs
		wantMsg string
	}{
		{"valid", SignUpArgs{"alice", "+919876543210", "secret1", "secret1"}, ""},
		{"valid without plus", SignUpArgs{"alice", "9876543210", "secret1", "secret1"}, ""},
		{"mismatch", SignUpArgs{"alice", "9876543210", "secret1", "secret2"}, MsgPasswordMismatch},
		{"mismatch wins over short", SignUpArgs{"alice", "bad", "abc", "abd"}, MsgPasswordMismatch},
		{"short", SignUpArgs{"alice", "9876543210", "abc", "abc"}, MsgPasswordTooShort},
		{"empty passwords", SignUpArgs{"alice", "9876543210", "", ""}, MsgPasswordTooShort},
		{"leading zero", SignUpArgs{"alice", "0987654321", "secret1", "secret1"}, MsgInvalidPhone},
		{"dashes", SignUpArgs{"alice", "123-456-7890", "secret1", "secret1"}, MsgInvalidPhone},
		{"too long", SignUpArgs{"alice", "12345678901234567", "secret1", "secret1"}, MsgInvalidPhone},
		{"empty phone", SignUpArgs{"alice", "", "secret1", "secret1"}, MsgInvalidPhone},
		{"empty username", SignUpArgs{"", "9876543210", "secret1", "secret1"}, MsgFillAllFields},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, s := newTestAuthenticator()
			u, err := a.SignUp(context.Background(), tc.args)
			if tc.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.args.Phone, u.Phone)
				assert.True(t, s.IsAuthenticated())
				return
			}
			var verr *api.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.wantMsg, verr.Message)
			assert.False(t, s.IsAuthenticated(), "no session on failed sign up")
		})
	}
}

func TestPasswordMismatchAlwaysFails(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw := fmt.Sprintf("password-%d", i)
		a, s := newTestAuthenticator()
		_, err := a.SignUp(context.Background(), SignUpArgs{"carol", "15551234567", pw, pw + "x"})
		var verr *api.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, MsgPasswordMismatch, verr.Message)
		assert.False(t, s.IsAuthenticated())
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"1", "+1", "9", "+1234567890123456", "1234567890123456"}
	invalid := []string{"", "+", "0", "+0123", "12345678901234567", "12 34", "+-1", "++1", "1a"}
	for _, p := range valid {
		assert.True(t, ValidPhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidPhone(p), p)
	}
}
