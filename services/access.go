package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/repository"
)

// orNotFound rewrites a gorm missing-record error into the not-found kind;
// other repository errors pass through unchanged.
func orNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return err
}

// access resolves the caller and enforces membership roles. Every tenant
// operation runs through it before any connection is opened.
type access struct {
	userRepo   repository.UserRepository
	memberRepo repository.DbMemberRepository
}

func newAccess() *access {
	return &access{
		userRepo:   repository.NewUserRepository(),
		memberRepo: repository.NewDbMemberRepository(),
	}
}

// currentUser resolves an authenticated username to its account row.
func (a *access) currentUser(tx *gorm.DB, username string) (*models.User, error) {
	user, err := a.userRepo.GetByUsername(tx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %q no longer exists", apperrors.ErrUnauthorized, username)
		}
		return nil, err
	}
	return user, nil
}

// requireRole returns the caller's membership on a database, failing with
// the unauthorized kind for non-members and the forbidden kind for members
// below the minimum role.
func (a *access) requireRole(tx *gorm.DB, dbID, userID uint, min models.DbRole) (*models.DbMember, error) {
	member, err := a.memberRepo.GetByDbAndUser(tx, dbID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: not a member of database %d", apperrors.ErrUnauthorized, dbID)
		}
		return nil, err
	}

	role, err := models.ParseDbRole(member.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: membership %d holds %v", apperrors.ErrForbidden, member.ID, err)
	}
	if !role.AtLeast(min) {
		return nil, fmt.Errorf("%w: role %s is below required %s", apperrors.ErrForbidden, role, min)
	}
	return member, nil
}
