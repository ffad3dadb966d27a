package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/testutil/memstore"
)

func TestUserUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewUserUseCase(store.Users())

	u, err := uc.Create(ctx, dto.CreateUserRequest{Username: "jdoe", Password: "secret1", Role: "warehouse"})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", u.Username)

	stored, err := store.Users().GetByUsername(ctx, "jdoe")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "jdoe", Password: "secret1", Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserUseCase_CreateValidation(t *testing.T) {
	uc := NewUserUseCase(memstore.New().Users())
	tests := []struct {
		name string
		in   dto.CreateUserRequest
	}{
		{"short password", dto.CreateUserRequest{Username: "a", Password: "12345", Role: "admin"}},
		{"bad role", dto.CreateUserRequest{Username: "a", Password: "123456", Role: "root"}},
		{"no username", dto.CreateUserRequest{Username: " ", Password: "123456", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUserUseCase_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	uc := NewUserUseCase(memstore.New().Users())
	admin, err := uc.Create(ctx, dto.CreateUserRequest{Username: "boss", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	clerk, err := uc.Create(ctx, dto.CreateUserRequest{Username: "clerk", Password: "secret1", Role: "warehouse"})
	require.NoError(t, err)

	role := "super"
	upd, err := uc.Update(ctx, clerk.ID, dto.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "super", upd.Role)

	short := "x"
	_, err = uc.Update(ctx, clerk.ID, dto.UpdateUserRequest{Password: &short})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, admin.ID, clerk.ID))
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, clerk.ID), domain.ErrUserNotFound)

	got, err := uc.GetByID(ctx, clerk.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
