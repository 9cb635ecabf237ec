package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"mariadbpaas/config"
	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
	"mariadbpaas/services/tenant"
)

// BackupPage is one page of backup records with the total count.
type BackupPage struct {
	Backups  []models.BackupResponse `json:"backups"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}

// BackupService captures tenant databases to object storage and replays
// them back. Dumps run with the privileged control credential because
// tenant grants do not cover routines and events; restores run with the
// caller's own tenant credential.
type BackupService interface {
	// Create dumps the database and uploads it. OWNER or ADMIN only.
	Create(ctx context.Context, username string, dbID uint, req models.BackupCreateRequest) (*models.BackupResponse, error)

	// List returns backups of a database newest first. Any member.
	List(username string, dbID uint, page, pageSize int) (*BackupPage, error)

	// Download streams the dump payload from object storage. Any member.
	// The backup must belong to the addressed database. The caller must
	// close the returned reader.
	Download(ctx context.Context, username string, dbID, backupID uint) (io.ReadCloser, *models.Backup, error)

	// Restore wipes the database objects and replays a stored dump into
	// it. OWNER or ADMIN only. Individual statement failures are counted,
	// not fatal.
	Restore(ctx context.Context, username string, dbID, backupID uint) (*models.RestoreResult, error)

	// Import replays an uploaded dump stream into the database without a
	// prior wipe. READWRITE or above.
	Import(ctx context.Context, username string, dbID uint, dump io.Reader) (*models.RestoreResult, error)

	// Delete removes the object first, then the metadata row. OWNER or
	// ADMIN only.
	Delete(ctx context.Context, username string, dbID, backupID uint) error
}

type backupService struct {
	access     *access
	backupRepo repository.BackupRepository
	dbRepo     repository.DbRepository
	dbUserRepo repository.DbUserRepository
	userRepo   repository.UserRepository
	connector  *tenant.Connector
	audit      AuditLogService
}

// NewBackupService creates a new backup service instance.
func NewBackupService(audit AuditLogService) BackupService {
	return &backupService{
		access:     newAccess(),
		backupRepo: repository.NewBackupRepository(),
		dbRepo:     repository.NewDbRepository(),
		dbUserRepo: repository.NewDbUserRepository(),
		userRepo:   repository.NewUserRepository(),
		connector:  tenant.NewConnector(),
		audit:      audit,
	}
}

func (s *backupService) Create(ctx context.Context, username string, dbID uint, req models.BackupCreateRequest) (*models.BackupResponse, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}

	if err := os.MkdirAll(config.Cfg.BackupTempDir, 0o755); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102_150405")
	fileName := fmt.Sprintf("%s_%s.sql", db.Name, timestamp)
	s3Key := fmt.Sprintf("backups/%s/%s", db.Name, fileName)

	// The temp file carries a uuid so two dumps of the same database in
	// the same second cannot clobber each other.
	tempPath := filepath.Join(config.Cfg.BackupTempDir,
		fmt.Sprintf("%s_%s_%s.sql", db.Name, timestamp, uuid.NewString()[:8]))
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logger.Warnf("failed to remove backup temp file %s: %v", tempPath, err)
		}
	}()

	if err := s.runMysqldump(ctx, db.Name, tempPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(tempPath)
	if err != nil {
		return nil, fmt.Errorf("backup file missing after dump: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: mysqldump produced an empty file for %s", apperrors.ErrConflict, db.Name)
	}

	dumpFile, err := os.Open(tempPath)
	if err != nil {
		return nil, err
	}
	defer dumpFile.Close()

	_, err = config.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(config.Cfg.S3Bucket),
		Key:         aws.String(s3Key),
		Body:        dumpFile,
		ContentType: aws.String("application/sql"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: uploading backup %s: %v", apperrors.ErrConnectivity, s3Key, err)
	}

	backup := &models.Backup{
		DbID:        dbID,
		UserID:      user.ID,
		FileName:    fileName,
		S3Key:       s3Key,
		FileSize:    info.Size(),
		Description: req.Description,
	}
	if err := s.backupRepo.Create(nil, backup); err != nil {
		return nil, err
	}

	s.audit.Record(user.ID, &dbID, "CREATE_BACKUP",
		fmt.Sprintf("backed up %s to %s (%d bytes)", db.Name, s3Key, info.Size()))
	logger.Infof("user %s backed up database %s (%d bytes)", username, db.Name, info.Size())

	return s.toResponse(backup, db, user), nil
}

// runMysqldump shells out to mysqldump with the control credential. The
// password travels in MYSQL_PWD, never on the command line.
func (s *backupService) runMysqldump(ctx context.Context, dbName, outPath string) error {
	dumpCtx, cancel := context.WithTimeout(ctx, config.Cfg.BackupTimeout)
	defer cancel()

	cmd := exec.CommandContext(dumpCtx, config.Cfg.MysqldumpPath,
		"-h", s.connector.Host,
		"-P", strconv.Itoa(s.connector.Port),
		"-u", s.connector.AdminUser,
		"--skip-column-statistics",
		"--single-transaction",
		"--routines",
		"--triggers",
		"--events",
		"--add-drop-table",
		"--complete-insert",
		"--hex-blob",
		"--default-character-set=utf8mb4",
		dbName,
	)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+s.connector.AdminPass)

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := stderr.String()
		if detail == "" {
			detail = "no error output"
		}
		return fmt.Errorf("%w: mysqldump for %s: %v: %s", apperrors.ErrConnectivity, dbName, err, detail)
	}
	return nil
}

func (s *backupService) List(username string, dbID uint, page, pageSize int) (*BackupPage, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleReadOnly); err != nil {
		return nil, err
	}
	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}

	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}

	total, err := s.backupRepo.CountByDb(nil, dbID)
	if err != nil {
		return nil, err
	}
	backups, err := s.backupRepo.GetByDbPaged(nil, dbID, page*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]models.BackupResponse, 0, len(backups))
	for i := range backups {
		var actor *models.User
		if u, err := s.userRepo.GetByID(nil, backups[i].UserID); err == nil {
			actor = u
		}
		responses = append(responses, *s.toResponse(&backups[i], db, actor))
	}

	return &BackupPage{
		Backups:  responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *backupService) Download(ctx context.Context, username string, dbID, backupID uint) (io.ReadCloser, *models.Backup, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleReadOnly); err != nil {
		return nil, nil, err
	}

	backup, err := s.backupRepo.GetByDbAndID(nil, dbID, backupID)
	if err != nil {
		return nil, nil, orNotFound(err, fmt.Sprintf("backup %d", backupID))
	}

	obj, err := config.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(config.Cfg.S3Bucket),
		Key:    aws.String(backup.S3Key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: backup object %s", apperrors.ErrNotFound, backup.S3Key)
	}
	return obj.Body, backup, nil
}

func (s *backupService) Restore(ctx context.Context, username string, dbID, backupID uint) (*models.RestoreResult, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}

	backup, err := s.backupRepo.GetByID(nil, backupID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("backup %d", backupID))
	}
	if backup.DbID != dbID {
		return nil, fmt.Errorf("%w: backup %d does not belong to database %d", apperrors.ErrNotFound, backupID, dbID)
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, user.ID)
	if err != nil {
		return nil, orNotFound(err, "database credential")
	}

	obj, err := config.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(config.Cfg.S3Bucket),
		Key:    aws.String(backup.S3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: backup object %s", apperrors.ErrNotFound, backup.S3Key)
	}
	defer obj.Body.Close()

	conn, err := s.connector.OpenAs(ctx, db, cred)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	result, err := s.replayInto(ctx, conn, db.Name, obj.Body, true)
	if err != nil {
		return nil, err
	}

	s.audit.Record(user.ID, &dbID, "RESTORE_BACKUP",
		fmt.Sprintf("restored %s from %s: %d ok, %d failed",
			db.Name, backup.FileName, result.ExecutedStatements, result.FailedStatements))
	logger.Infof("user %s restored database %s from backup %d (%d ok, %d failed)",
		username, db.Name, backupID, result.ExecutedStatements, result.FailedStatements)
	return result, nil
}

func (s *backupService) Import(ctx context.Context, username string, dbID uint, dump io.Reader) (*models.RestoreResult, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleReadWrite); err != nil {
		return nil, err
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, user.ID)
	if err != nil {
		return nil, orNotFound(err, "database credential")
	}

	conn, err := s.connector.OpenAs(ctx, db, cred)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	result, err := s.replayInto(ctx, conn, db.Name, dump, false)
	if err != nil {
		return nil, err
	}

	s.audit.Record(user.ID, &dbID, "IMPORT_SQL",
		fmt.Sprintf("imported dump into %s: %d ok, %d failed",
			db.Name, result.ExecutedStatements, result.FailedStatements))
	return result, nil
}

// replayInto runs a dump stream against a live connection with foreign key
// checks suspended. When wipe is set, every existing table, routine,
// trigger and event is dropped first so the dump lands on a clean slate.
func (s *backupService) replayInto(ctx context.Context, conn *sql.DB, dbName string, dump io.Reader, wipe bool) (*models.RestoreResult, error) {
	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1"); err != nil {
			logger.Warnf("failed to re-enable foreign key checks on %s: %v", dbName, err)
		}
	}()

	if wipe {
		s.dropAllObjects(ctx, conn, dbName)
	}

	result, err := replayDump(dump, func(stmt string) error {
		_, execErr := conn.ExecContext(ctx, stmt)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// dropAllObjects clears tables, procedures, functions, triggers and events
// from a tenant database. Every drop is best effort.
func (s *backupService) dropAllObjects(ctx context.Context, conn *sql.DB, dbName string) {
	drop := func(kind, name string) {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("DROP %s IF EXISTS `%s`", kind, name)); err != nil {
			logger.Warnf("failed to drop %s %s in %s: %v", kind, name, dbName, err)
		}
	}

	forEach := func(query string, args []interface{}, fn func(name string)) {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			logger.Warnf("object listing failed in %s: %v", dbName, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				logger.Warnf("object listing scan failed in %s: %v", dbName, err)
				return
			}
			fn(name)
		}
	}

	forEach("SHOW TABLES", nil, func(name string) { drop("TABLE", name) })
	forEach("SELECT ROUTINE_NAME FROM information_schema.ROUTINES WHERE ROUTINE_SCHEMA = ? AND ROUTINE_TYPE = 'PROCEDURE'",
		[]interface{}{dbName}, func(name string) { drop("PROCEDURE", name) })
	forEach("SELECT ROUTINE_NAME FROM information_schema.ROUTINES WHERE ROUTINE_SCHEMA = ? AND ROUTINE_TYPE = 'FUNCTION'",
		[]interface{}{dbName}, func(name string) { drop("FUNCTION", name) })
	forEach("SELECT TRIGGER_NAME FROM information_schema.TRIGGERS WHERE TRIGGER_SCHEMA = ?",
		[]interface{}{dbName}, func(name string) { drop("TRIGGER", name) })
	forEach("SELECT EVENT_NAME FROM information_schema.EVENTS WHERE EVENT_SCHEMA = ?",
		[]interface{}{dbName}, func(name string) { drop("EVENT", name) })
}

func (s *backupService) Delete(ctx context.Context, username string, dbID, backupID uint) error {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleAdmin); err != nil {
		return err
	}

	backup, err := s.backupRepo.GetByDbAndID(nil, dbID, backupID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("backup %d", backupID))
	}

	// Object first: a row without an object is a dangling pointer, an
	// object without a row is only leaked storage.
	_, err = config.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(config.Cfg.S3Bucket),
		Key:    aws.String(backup.S3Key),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting backup object %s: %v", apperrors.ErrConnectivity, backup.S3Key, err)
	}

	if err := s.backupRepo.Delete(nil, backup); err != nil {
		return err
	}

	s.audit.Record(user.ID, &dbID, "DELETE_BACKUP",
		fmt.Sprintf("deleted backup %s", backup.FileName))
	return nil
}

func (s *backupService) toResponse(backup *models.Backup, db *models.Db, actor *models.User) *models.BackupResponse {
	resp := &models.BackupResponse{
		ID:          backup.ID,
		DbID:        backup.DbID,
		UserID:      backup.UserID,
		FileName:    backup.FileName,
		FileSize:    backup.FileSize,
		Description: backup.Description,
		CreatedAt:   backup.CreatedAt,
	}
	if db != nil {
		resp.DbName = db.Name
	}
	if actor != nil {
		resp.UserName = actor.Username
	}
	return resp
}
