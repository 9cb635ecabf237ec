package services

import (
	"gorm.io/gorm"

	"mariadbpaas/models"
)

// Slice-backed repository fakes. Misses return gorm.ErrRecordNotFound so the
// services see the same error shape the gorm implementations produce.

type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) GetByUsername(tx *gorm.DB, username string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByID(tx *gorm.DB, id uint) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ExistsByUsername(tx *gorm.DB, username string) (bool, error) {
	_, err := f.GetByUsername(tx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(tx *gorm.DB, email string) (bool, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(tx *gorm.DB, user *models.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *user)
	return nil
}

type fakeMemberRepo struct {
	members []models.DbMember
}

func (f *fakeMemberRepo) GetByID(tx *gorm.DB, id uint) (*models.DbMember, error) {
	for i := range f.members {
		if f.members[i].ID == id {
			m := f.members[i]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbMember, error) {
	for i := range f.members {
		if f.members[i].DbID == dbID && f.members[i].UserID == userID {
			m := f.members[i]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbMember, error) {
	var out []models.DbMember
	for i := range f.members {
		if f.members[i].DbID == dbID {
			out = append(out, f.members[i])
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) GetAllByUser(tx *gorm.DB, userID uint) ([]models.DbMember, error) {
	var out []models.DbMember
	for i := range f.members {
		if f.members[i].UserID == userID {
			out = append(out, f.members[i])
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) ExistsByDbAndUser(tx *gorm.DB, dbID, userID uint) (bool, error) {
	_, err := f.GetByDbAndUser(tx, dbID, userID)
	return err == nil, nil
}

func (f *fakeMemberRepo) Create(tx *gorm.DB, member *models.DbMember) error {
	member.ID = uint(len(f.members) + 1)
	f.members = append(f.members, *member)
	return nil
}

func (f *fakeMemberRepo) Save(tx *gorm.DB, member *models.DbMember) error {
	for i := range f.members {
		if f.members[i].ID == member.ID {
			f.members[i] = *member
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) Delete(tx *gorm.DB, member *models.DbMember) error {
	for i := range f.members {
		if f.members[i].ID == member.ID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	kept := f.members[:0]
	for _, m := range f.members {
		if m.DbID != dbID {
			kept = append(kept, m)
		}
	}
	f.members = kept
	return nil
}

type fakeDbRepo struct {
	dbs []models.Db
}

func (f *fakeDbRepo) GetByID(tx *gorm.DB, id uint) (*models.Db, error) {
	for i := range f.dbs {
		if f.dbs[i].ID == id {
			db := f.dbs[i]
			return &db, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDbRepo) GetAllByProject(tx *gorm.DB, projectID uint) ([]models.Db, error) {
	var out []models.Db
	for i := range f.dbs {
		if f.dbs[i].ProjectID == projectID {
			out = append(out, f.dbs[i])
		}
	}
	return out, nil
}

func (f *fakeDbRepo) ExistsByName(tx *gorm.DB, name string) (bool, error) {
	for i := range f.dbs {
		if f.dbs[i].Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDbRepo) ExistsByProject(tx *gorm.DB, projectID uint) (bool, error) {
	for i := range f.dbs {
		if f.dbs[i].ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDbRepo) Create(tx *gorm.DB, db *models.Db) error {
	db.ID = uint(len(f.dbs) + 1)
	f.dbs = append(f.dbs, *db)
	return nil
}

func (f *fakeDbRepo) Delete(tx *gorm.DB, db *models.Db) error {
	for i := range f.dbs {
		if f.dbs[i].ID == db.ID {
			f.dbs = append(f.dbs[:i], f.dbs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeDbUserRepo struct {
	creds []models.DbUser
}

func (f *fakeDbUserRepo) GetByDbAndUser(tx *gorm.DB, dbID, userID uint) (*models.DbUser, error) {
	for i := range f.creds {
		if f.creds[i].DbID == dbID && f.creds[i].UserID == userID {
			c := f.creds[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDbUserRepo) GetAllByDb(tx *gorm.DB, dbID uint) ([]models.DbUser, error) {
	var out []models.DbUser
	for i := range f.creds {
		if f.creds[i].DbID == dbID {
			out = append(out, f.creds[i])
		}
	}
	return out, nil
}

func (f *fakeDbUserRepo) Create(tx *gorm.DB, dbUser *models.DbUser) error {
	dbUser.ID = uint(len(f.creds) + 1)
	f.creds = append(f.creds, *dbUser)
	return nil
}

func (f *fakeDbUserRepo) Delete(tx *gorm.DB, dbUser *models.DbUser) error {
	for i := range f.creds {
		if f.creds[i].ID == dbUser.ID {
			f.creds = append(f.creds[:i], f.creds[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDbUserRepo) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	kept := f.creds[:0]
	for _, c := range f.creds {
		if c.DbID != dbID {
			kept = append(kept, c)
		}
	}
	f.creds = kept
	return nil
}

type fakeBackupRepo struct {
	backups []models.Backup
}

func (f *fakeBackupRepo) GetByID(tx *gorm.DB, id uint) (*models.Backup, error) {
	for i := range f.backups {
		if f.backups[i].ID == id {
			b := f.backups[i]
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBackupRepo) GetByDbAndID(tx *gorm.DB, dbID, id uint) (*models.Backup, error) {
	for i := range f.backups {
		if f.backups[i].DbID == dbID && f.backups[i].ID == id {
			b := f.backups[i]
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBackupRepo) GetByDbPaged(tx *gorm.DB, dbID uint, offset, limit int) ([]models.Backup, error) {
	var out []models.Backup
	for i := range f.backups {
		if f.backups[i].DbID == dbID {
			out = append(out, f.backups[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBackupRepo) CountByDb(tx *gorm.DB, dbID uint) (int64, error) {
	var count int64
	for i := range f.backups {
		if f.backups[i].DbID == dbID {
			count++
		}
	}
	return count, nil
}

func (f *fakeBackupRepo) Create(tx *gorm.DB, backup *models.Backup) error {
	backup.ID = uint(len(f.backups) + 1)
	f.backups = append(f.backups, *backup)
	return nil
}

func (f *fakeBackupRepo) Delete(tx *gorm.DB, backup *models.Backup) error {
	for i := range f.backups {
		if f.backups[i].ID == backup.ID {
			f.backups = append(f.backups[:i], f.backups[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeBackupRepo) DeleteAllByDb(tx *gorm.DB, dbID uint) error {
	kept := f.backups[:0]
	for _, b := range f.backups {
		if b.DbID != dbID {
			kept = append(kept, b)
		}
	}
	f.backups = kept
	return nil
}

// fakeAudit records queued actions synchronously.
type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(userID uint, dbID *uint, action, details string) {
	f.actions = append(f.actions, action)
}

func (f *fakeAudit) GetByDb(username string, dbID uint, page, pageSize int) (*AuditPage, error) {
	return &AuditPage{}, nil
}

func (f *fakeAudit) Close() {}
