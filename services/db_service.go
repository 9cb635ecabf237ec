package services

import (
	"context"
	"fmt"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
	"mariadbpaas/services/provision"
	"mariadbpaas/services/tenant"
	"mariadbpaas/utils"
)

// DbService owns the managed-database lifecycle. Creation and deletion
// span two systems: the physical MariaDB server changes first, then the
// control-plane rows. There is no compensating rollback once the physical
// side has succeeded; see Delete for the partial-failure rules.
type DbService interface {
	// Create provisions a physical database, seeds the caller as OWNER
	// with a fresh server credential, and persists the control-plane rows.
	// The credential (with password) is returned only here and on Get.
	Create(ctx context.Context, username string, req models.DbCreateRequest) (*models.DbResponse, error)

	// GetAll lists every database the caller is a member of.
	GetAll(username string) ([]models.DbResponse, error)

	// GetAllByProject lists the databases of one project owned by the caller.
	GetAllByProject(username string, projectID uint) ([]models.DbResponse, error)

	// Get returns one database with the caller's own credential attached.
	Get(username string, dbID uint) (*models.DbResponse, error)

	// Delete destroys the physical database, every server login granted on
	// it, and all dependent control-plane rows. OWNER only.
	Delete(ctx context.Context, username string, dbID uint) error
}

type dbService struct {
	access      *access
	baseRepo    repository.BaseRepository
	dbRepo      repository.DbRepository
	projectRepo repository.ProjectRepository
	memberRepo  repository.DbMemberRepository
	dbUserRepo  repository.DbUserRepository
	auditRepo   repository.AuditLogRepository
	backupRepo  repository.BackupRepository
	connector   *tenant.Connector
	engine      *provision.Engine
	audit       AuditLogService
}

// NewDbService creates a new database lifecycle service instance.
func NewDbService(audit AuditLogService) DbService {
	return &dbService{
		access:      newAccess(),
		baseRepo:    repository.NewBaseRepository(),
		dbRepo:      repository.NewDbRepository(),
		projectRepo: repository.NewProjectRepository(),
		memberRepo:  repository.NewDbMemberRepository(),
		dbUserRepo:  repository.NewDbUserRepository(),
		auditRepo:   repository.NewAuditLogRepository(),
		backupRepo:  repository.NewBackupRepository(),
		connector:   tenant.NewConnector(),
		engine:      provision.NewEngine(),
		audit:       audit,
	}
}

// connectionString renders the credential as a client URI.
func connectionString(host string, port int, dbName, username, password string) string {
	return fmt.Sprintf("mariadb://%s:%s@%s:%d/%s", username, password, host, port, dbName)
}

func (s *dbService) Create(ctx context.Context, username string, req models.DbCreateRequest) (*models.DbResponse, error) {
	if err := utils.CheckIdentifier("database name", req.Name); err != nil {
		return nil, err
	}

	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByOwnerAndID(nil, user.ID, req.ProjectID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("project %d", req.ProjectID))
	}

	taken, err := s.dbRepo.ExistsByName(nil, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: database name %q is already in use", apperrors.ErrConflict, req.Name)
	}

	conn, err := s.connector.OpenAdmin(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := s.engine.CreateDatabase(ctx, conn, req.Name); err != nil {
		return nil, err
	}

	serverUser := provision.ServerUsername(req.Name, user.Username)
	password, err := s.engine.CreateServerUser(ctx, conn, req.Name, serverUser, models.RoleOwner)
	if err != nil {
		return nil, err
	}

	hostname := s.connector.Host
	port := s.connector.Port

	tx := s.baseRepo.Begin()
	db := &models.Db{
		ProjectID: project.ID,
		Name:      req.Name,
		Hostname:  hostname,
		Port:      port,
	}
	if err := s.dbRepo.Create(tx, db); err != nil {
		tx.Rollback()
		logger.Errorf("control-plane insert failed after provisioning %s; physical database is orphaned: %v", req.Name, err)
		return nil, err
	}
	dbUser := &models.DbUser{
		DbID:     db.ID,
		UserID:   user.ID,
		Username: serverUser,
		Password: password,
	}
	if err := s.dbUserRepo.Create(tx, dbUser); err != nil {
		tx.Rollback()
		return nil, err
	}
	member := &models.DbMember{
		DbID:   db.ID,
		UserID: user.ID,
		Role:   string(models.RoleOwner),
	}
	if err := s.memberRepo.Create(tx, member); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.audit.Record(user.ID, &db.ID, "CREATE_DATABASE", fmt.Sprintf("created database %s", db.Name))
	logger.Infof("user %s created database %s (id=%d)", username, db.Name, db.ID)

	return &models.DbResponse{
		ID:          db.ID,
		Name:        db.Name,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		CreatedAt:   db.CreatedAt,
		Credential: &models.CredentialInfo{
			Hostname:         hostname,
			Port:             port,
			Username:         serverUser,
			Password:         password,
			ConnectionString: connectionString(hostname, port, db.Name, serverUser, password),
		},
	}, nil
}

func (s *dbService) GetAll(username string) ([]models.DbResponse, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberRepo.GetAllByUser(nil, user.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.DbResponse, 0, len(memberships))
	for _, m := range memberships {
		db, err := s.dbRepo.GetByID(nil, m.DbID)
		if err != nil {
			logger.Warnf("membership %d points at missing database %d", m.ID, m.DbID)
			continue
		}
		resp := models.DbResponse{
			ID:        db.ID,
			Name:      db.Name,
			ProjectID: db.ProjectID,
			CreatedAt: db.CreatedAt,
		}
		if project, err := s.projectRepo.GetByID(nil, db.ProjectID); err == nil {
			resp.ProjectName = project.Name
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *dbService) GetAllByProject(username string, projectID uint) ([]models.DbResponse, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.GetByOwnerAndID(nil, user.ID, projectID); err != nil {
		return nil, orNotFound(err, fmt.Sprintf("project %d", projectID))
	}

	dbs, err := s.dbRepo.GetAllByProject(nil, projectID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.DbResponse, 0, len(dbs))
	for _, db := range dbs {
		responses = append(responses, models.DbResponse{
			ID:        db.ID,
			Name:      db.Name,
			ProjectID: db.ProjectID,
			CreatedAt: db.CreatedAt,
		})
	}
	return responses, nil
}

func (s *dbService) Get(username string, dbID uint) (*models.DbResponse, error) {
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
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, user.ID)
	if err != nil {
		return nil, orNotFound(err, "database credential")
	}

	resp := &models.DbResponse{
		ID:        db.ID,
		Name:      db.Name,
		ProjectID: db.ProjectID,
		CreatedAt: db.CreatedAt,
		Credential: &models.CredentialInfo{
			Hostname:         db.Hostname,
			Port:             db.Port,
			Username:         cred.Username,
			Password:         cred.Password,
			ConnectionString: connectionString(db.Hostname, db.Port, db.Name, cred.Username, cred.Password),
		},
	}
	if project, err := s.projectRepo.GetByID(nil, db.ProjectID); err == nil {
		resp.ProjectName = project.Name
	}
	return resp, nil
}

func (s *dbService) Delete(ctx context.Context, username string, dbID uint) error {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleOwner); err != nil {
		return err
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("database %d", dbID))
	}

	conn, err := s.connector.OpenAdmin(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Physical teardown first. If it fails the control-plane rows stay so
	// the operation can be retried; if the control-plane deletes fail
	// afterwards, the physical database is already gone and the orphaned
	// rows must be cleaned up by hand.
	if err := s.engine.DropDatabase(ctx, conn, db.Name); err != nil {
		return err
	}
	if err := s.engine.DropAllUsers(ctx, conn, db.Name); err != nil {
		return err
	}

	tx := s.baseRepo.Begin()
	if err := s.memberRepo.DeleteAllByDb(tx, dbID); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.dbUserRepo.DeleteAllByDb(tx, dbID); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.backupRepo.DeleteAllByDb(tx, dbID); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.auditRepo.DeleteAllByDb(tx, dbID); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.dbRepo.Delete(tx, db); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.audit.Record(user.ID, nil, "DELETE_DATABASE", fmt.Sprintf("deleted database %s", db.Name))
	logger.Infof("user %s deleted database %s (id=%d)", username, db.Name, db.ID)
	return nil
}
