package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/jwt"
)

func TestPipeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(stored *User, claims *jwt.Claims, verifyErr error) (*MockSigner, *Authority) {
		store := &MockCredentialStore{}
		signer := &MockSigner{}
		signer.On("Verify", mock.Anything).Return(claims, verifyErr)
		if stored != nil {
			store.On("UserByID", ctx, stored.ID).Return(stored, nil)
		}
		store.On("UserByID", ctx, mock.Anything).Return(nil, ErrUserNotFound)
		return signer, newTestAuthority(store, signer)
	}

	t.Run("valid user token", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(&User{ID: "u1", Token: "T1"}, &jwt.Claims{UserID: "u1"}, nil)

		p, err := UserPipeline(signer, a).Run(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
		assert.Equal(t, "u1", p.User.ID)
	})

	t.Run("missing bearer", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(nil, nil, nil)
		_, err := UserPipeline(signer, a).Run(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(nil, nil, jwt.ErrInvalidToken)
		_, err := UserPipeline(signer, a).Run(ctx, "garbage")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("user deleted", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(nil, &jwt.Claims{UserID: "gone"}, nil)
		_, err := UserPipeline(signer, a).Run(ctx, "T1")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("signed out", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(&User{ID: "u1"}, &jwt.Claims{UserID: "u1"}, nil)
		_, err := UserPipeline(signer, a).Run(ctx, "T1")
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("superseded token", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(&User{ID: "u1", Token: "T2"}, &jwt.Claims{UserID: "u1"}, nil)
		_, err := UserPipeline(signer, a).Run(ctx, "T1")
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("admin route rejects plain user", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(&User{ID: "u1", Token: "T1"}, &jwt.Claims{UserID: "u1"}, nil)
		_, err := AdminPipeline(signer, a).Run(ctx, "T1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin route accepts admin", func(t *testing.T) {
		t.Parallel()
		signer, a := setup(
			&User{ID: "u1", Token: "T1", Roles: []string{RoleAdmin}},
			&jwt.Claims{UserID: "u1", Roles: []string{RoleAdmin}}, nil,
		)
		p, err := AdminPipeline(signer, a).Run(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, []string{RoleAdmin}, p.Roles)
	})
}

func TestCheckRevocation_IndependentOfSignature(t *testing.T) {
	t.Parallel()

	step := CheckRevocation()
	assert.ErrorIs(t, step(context.Background(), &Principal{Token: "x"}), ErrUnauthorized)
	assert.NoError(t, step(context.Background(), &Principal{Token: "x", User: &User{Token: "x"}}))
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, PrincipalFromContext(context.Background()))
	p := &Principal{UserID: "u1"}
	assert.Same(t, p, PrincipalFromContext(WithPrincipal(context.Background(), p)))
}
