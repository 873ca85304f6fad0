package repo

import (
	"DressCode/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_RegisterAndLookup(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	alice, err := r.CreateUser(ctx, &model.User{Login: "alice", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero(), "created_at filled by gorm")

	bob, err := r.CreateUser(ctx, &model.User{Login: "bob", Password: "$2a$10$other"})
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, bob.ID)

	tests := []struct {
		login   string
		wantID  int64
		wantErr error
	}{
		{login: "alice", wantID: alice.ID},
		{login: "bob", wantID: bob.ID},
		{login: "Alice", wantErr: gorm.ErrRecordNotFound},
		{login: "", wantErr: gorm.ErrRecordNotFound},
	}
	for _, tt := range tests {
		t.Run("login="+tt.login, func(t *testing.T) {
			got, err := r.GetUserByLogin(ctx, tt.login)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.login, got.Login)
		})
	}
}

func TestUserRepository_LoginIsUnique(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	_, err := r.CreateUser(ctx, &model.User{Login: "alice", Password: "h1"})
	require.NoError(t, err)
	_, err = r.CreateUser(ctx, &model.User{Login: "alice", Password: "h2"})
	assert.Error(t, err)

	got, err := r.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.Password, "first registration wins")
}
