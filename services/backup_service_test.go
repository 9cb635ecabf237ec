package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
)

// backupFixture builds a backup service over fakes. Database 1 has READONLY
// member alice; backup 5 belongs to database 2. Object storage stays
// unconfigured, so any test reaching it would fail loudly.
func backupFixture() *backupService {
	return &backupService{
		access: &access{
			userRepo: &fakeUserRepo{users: []models.User{
				{ID: 1, Username: "alice"},
			}},
			memberRepo: &fakeMemberRepo{members: []models.DbMember{
				{ID: 10, DbID: 1, UserID: 1, Role: string(models.RoleReadOnly)},
			}},
		},
		backupRepo: &fakeBackupRepo{backups: []models.Backup{
			{ID: 5, DbID: 2, UserID: 1, FileName: "other_20260101_000000.sql", S3Key: "backups/other/other_20260101_000000.sql"},
		}},
		audit: &fakeAudit{},
	}
}

// TestDownload_ScopedToAddressedDatabase tests that a backup can only be
// fetched through the database it belongs to, even when the caller would be
// allowed to read the owning database directly.
func TestDownload_ScopedToAddressedDatabase(t *testing.T) {
	s := backupFixture()

	_, _, err := s.Download(context.Background(), "alice", 1, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDownload_NonMemberUnauthorized(t *testing.T) {
	s := backupFixture()

	_, _, err := s.Download(context.Background(), "alice", 2, 5)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRestore_BackupFromOtherDatabase(t *testing.T) {
	s := backupFixture()
	s.access.memberRepo.(*fakeMemberRepo).members = append(
		s.access.memberRepo.(*fakeMemberRepo).members,
		models.DbMember{ID: 11, DbID: 3, UserID: 1, Role: string(models.RoleOwner)},
	)

	_, err := s.Restore(context.Background(), "alice", 3, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_RequiresAdmin(t *testing.T) {
	s := backupFixture()
	s.backupRepo.(*fakeBackupRepo).backups = append(
		s.backupRepo.(*fakeBackupRepo).backups,
		models.Backup{ID: 6, DbID: 1, UserID: 1, FileName: "shop_20260101_000000.sql"},
	)

	err := s.Delete(context.Background(), "alice", 1, 6)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
