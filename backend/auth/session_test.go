package auth

import (
	"context"
	"testing"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name     string
		stored   string
		present  bool
		wantAuth bool
		wantUser api.User
	}{
		{name: "nothing persisted"},
		{
			name:     "persisted user",
			stored:   `{"username":"alice","phone":"+919876543210","id":"1700000000000"}`,
			present:  true,
			wantAuth: true,
			wantUser: api.User{Username: "alice", Phone: "+919876543210", ID: "1700000000000"},
		},
		{name: "malformed record", stored: `{"username":`, present: true},
		{name: "null record", stored: `null`, present: true},
		{name: "empty object", stored: `{}`, present: true},
		{name: "record without username", stored: `{"phone":"123-456-7890","id":"1"}`, present: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := store.NewMemory()
			if tc.present {
				require.NoError(t, m.Set(ctx, store.KeyUser, tc.stored))
			}
			s := NewSession(m)
			s.Restore(ctx)

			assert.Equal(t, tc.wantAuth, s.IsAuthenticated())
			u, ok := s.User()
			assert.Equal(t, tc.wantAuth, ok)
			assert.Equal(t, tc.wantUser, u)
		})
	}
}

func TestSessionLoginLogout(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	s := NewSession(m)
	u := api.User{Username: "bob", Phone: PlaceholderPhone, ID: "42"}

	s.Login(ctx, u)
	assert.True(t, s.IsAuthenticated())

	// A fresh session over the same store sees the login.
	restored := NewSession(m)
	restored.Restore(ctx)
	got, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, u, got)

	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
	_, found, _ := m.Get(ctx, store.KeyUser)
	assert.False(t, found, "logout should remove the persisted record")
}
