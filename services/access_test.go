package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
)

func testAccess() *access {
	return &access{
		userRepo: &fakeUserRepo{users: []models.User{
			{ID: 1, Username: "alice"},
		}},
		memberRepo: &fakeMemberRepo{members: []models.DbMember{
			{ID: 10, DbID: 1, UserID: 1, Role: string(models.RoleOwner)},
		}},
	}
}

// TestCurrentUser tests the caller resolution, including an authenticated
// token whose account row no longer exists.
func TestCurrentUser(t *testing.T) {
	a := testAccess()

	user, err := a.currentUser(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = a.currentUser(nil, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// TestRequireRole_Matrix tests every held-role against every minimum-role
// combination. A member passes exactly when the held role ranks at least as
// high as the minimum.
func TestRequireRole_Matrix(t *testing.T) {
	roles := []models.DbRole{models.RoleOwner, models.RoleAdmin, models.RoleReadWrite, models.RoleReadOnly}

	for i, held := range roles {
		for j, min := range roles {
			a := &access{
				userRepo: &fakeUserRepo{users: []models.User{{ID: 1, Username: "alice"}}},
				memberRepo: &fakeMemberRepo{members: []models.DbMember{
					{ID: 10, DbID: 1, UserID: 1, Role: string(held)},
				}},
			}

			member, err := a.requireRole(nil, 1, 1, min)
			if i <= j {
				require.NoError(t, err, "role %s should satisfy minimum %s", held, min)
				assert.Equal(t, string(held), member.Role)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrForbidden, "role %s should not satisfy minimum %s", held, min)
			}
		}
	}
}

// TestRequireRole_NonMember tests that non-membership reads as unauthorized,
// not forbidden, so a caller cannot tell which databases exist.
func TestRequireRole_NonMember(t *testing.T) {
	a := testAccess()

	_, err := a.requireRole(nil, 99, 1, models.RoleReadOnly)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// TestRequireRole_UnknownStoredRole tests that a corrupted role value denies
// access rather than granting anything.
func TestRequireRole_UnknownStoredRole(t *testing.T) {
	a := &access{
		userRepo: &fakeUserRepo{users: []models.User{{ID: 1, Username: "alice"}}},
		memberRepo: &fakeMemberRepo{members: []models.DbMember{
			{ID: 10, DbID: 1, UserID: 1, Role: "SUPERUSER"},
		}},
	}

	_, err := a.requireRole(nil, 1, 1, models.RoleReadOnly)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
