package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
)

// TestRegister_RejectsNonIdentifierUsernames tests that registration only
// accepts identifier-shaped usernames. Usernames flow into server login
// names and from there into grant statements, so anything carrying quotes
// or SQL fragments must be stopped here.
func TestRegister_RejectsNonIdentifierUsernames(t *testing.T) {
	s := &authService{userRepo: &fakeUserRepo{}}

	for _, username := range []string{
		"bob'@'%' WITH GRANT OPTION -- ",
		"bob smith",
		"bob-smith",
		"1bob",
		"bob;drop",
		"",
	} {
		_, err := s.Register(models.RegisterRequest{
			Username: username,
			Password: "secret123",
			Name:     "Bob",
			Email:    "bob@example.com",
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, "username %q", username)
	}
}

func TestRegister_AcceptsIdentifierUsername(t *testing.T) {
	s := &authService{userRepo: &fakeUserRepo{}}

	user, err := s.Register(models.RegisterRequest{
		Username: "bob_smith",
		Password: "secret123",
		Name:     "Bob",
		Email:    "bob@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob_smith", user.Username)
	assert.NotEqual(t, "secret123", user.Password)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := &authService{userRepo: &fakeUserRepo{users: []models.User{
		{ID: 1, Username: "bob_smith", Email: "other@example.com"},
	}}}

	_, err := s.Register(models.RegisterRequest{
		Username: "bob_smith",
		Password: "secret123",
		Name:     "Bob",
		Email:    "bob@example.com",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
