package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
	"mariadbpaas/services/provision"
	"mariadbpaas/services/tenant"
)

// MemberService keeps control-plane membership rows and live server grants
// consistent. Grant changes are applied on the server before the membership
// row is persisted, so a failed grant never leaves a row claiming a role
// the server does not enforce.
type MemberService interface {
	// List returns the members of a database. Any member may call.
	List(username string, dbID uint) ([]models.DbMemberResponse, error)

	// Add grants a platform user a role on a database and provisions
	// their server login. OWNER or ADMIN only; the OWNER role cannot be
	// granted here.
	Add(ctx context.Context, username string, dbID uint, req models.MemberAddRequest) (*models.DbMemberResponse, error)

	// UpdateRole changes a member's role. OWNER only; not on yourself;
	// never to or from OWNER.
	UpdateRole(ctx context.Context, username string, dbID, memberID uint, req models.MemberRoleRequest) error

	// Remove deletes a membership and its server login. OWNER or ADMIN;
	// not yourself; never the OWNER; an ADMIN cannot remove another ADMIN.
	Remove(ctx context.Context, username string, dbID, memberID uint) error
}

type memberService struct {
	access     *access
	baseRepo   repository.BaseRepository
	dbRepo     repository.DbRepository
	memberRepo repository.DbMemberRepository
	dbUserRepo repository.DbUserRepository
	userRepo   repository.UserRepository
	connector  *tenant.Connector
	engine     *provision.Engine
	audit      AuditLogService
}

// NewMemberService creates a new membership service instance.
func NewMemberService(audit AuditLogService) MemberService {
	return &memberService{
		access:     newAccess(),
		baseRepo:   repository.NewBaseRepository(),
		dbRepo:     repository.NewDbRepository(),
		memberRepo: repository.NewDbMemberRepository(),
		dbUserRepo: repository.NewDbUserRepository(),
		userRepo:   repository.NewUserRepository(),
		connector:  tenant.NewConnector(),
		engine:     provision.NewEngine(),
		audit:      audit,
	}
}

func (s *memberService) List(username string, dbID uint) ([]models.DbMemberResponse, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.GetAllByDb(nil, dbID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.DbMemberResponse, 0, len(members))
	for _, m := range members {
		resp := models.DbMemberResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Role:      m.Role,
			CreatedAt: m.CreatedAt,
		}
		if account, err := s.userRepo.GetByID(nil, m.UserID); err == nil {
			resp.Username = account.Username
			resp.Name = account.Name
			resp.Email = account.Email
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *memberService) Add(ctx context.Context, username string, dbID uint, req models.MemberAddRequest) (*models.DbMemberResponse, error) {
	caller, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, caller.ID, models.RoleAdmin); err != nil {
		return nil, err
	}

	role, err := models.ParseDbRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	if role == models.RoleOwner {
		return nil, fmt.Errorf("%w: the OWNER role cannot be granted", apperrors.ErrBadRequest)
	}

	target, err := s.userRepo.GetByUsername(nil, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", apperrors.ErrNotFound, req.Username)
		}
		return nil, err
	}

	already, err := s.memberRepo.ExistsByDbAndUser(nil, dbID, target.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("%w: %s is already a member", apperrors.ErrConflict, req.Username)
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}

	conn, err := s.connector.OpenAdmin(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	serverUser := provision.ServerUsername(db.Name, target.Username)
	password, err := s.engine.CreateServerUser(ctx, conn, db.Name, serverUser, role)
	if err != nil {
		return nil, err
	}

	tx := s.baseRepo.Begin()
	cred := &models.DbUser{
		DbID:     dbID,
		UserID:   target.ID,
		Username: serverUser,
		Password: password,
	}
	if err := s.dbUserRepo.Create(tx, cred); err != nil {
		tx.Rollback()
		return nil, err
	}
	member := &models.DbMember{
		DbID:   dbID,
		UserID: target.ID,
		Role:   string(role),
	}
	if err := s.memberRepo.Create(tx, member); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.audit.Record(caller.ID, &dbID, "ADD_MEMBER",
		fmt.Sprintf("added %s to %s as %s", target.Username, db.Name, role))
	logger.Infof("user %s added %s to database %s as %s", username, target.Username, db.Name, role)

	return &models.DbMemberResponse{
		ID:        member.ID,
		UserID:    target.ID,
		Username:  target.Username,
		Name:      target.Name,
		Email:     target.Email,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}, nil
}

func (s *memberService) UpdateRole(ctx context.Context, username string, dbID, memberID uint, req models.MemberRoleRequest) error {
	caller, err := s.access.currentUser(nil, username)
	if err != nil {
		return err
	}
	if _, err := s.access.requireRole(nil, dbID, caller.ID, models.RoleOwner); err != nil {
		return err
	}

	newRole, err := models.ParseDbRole(req.Role)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	if newRole == models.RoleOwner {
		return fmt.Errorf("%w: the OWNER role cannot be granted", apperrors.ErrBadRequest)
	}

	target, err := s.memberRepo.GetByID(nil, memberID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("member %d", memberID))
	}
	if target.DbID != dbID {
		return fmt.Errorf("%w: member %d does not belong to database %d", apperrors.ErrNotFound, memberID, dbID)
	}
	if target.UserID == caller.ID {
		return fmt.Errorf("%w: cannot change your own role", apperrors.ErrBadRequest)
	}
	if target.Role == string(models.RoleOwner) {
		return fmt.Errorf("%w: the OWNER role cannot be taken away", apperrors.ErrBadRequest)
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("database %d", dbID))
	}
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, target.UserID)
	if err != nil {
		return orNotFound(err, "member credential")
	}

	conn, err := s.connector.OpenAdmin(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Live grants change first; the row is only persisted once the server
	// agrees on the new role.
	if err := s.engine.ApplyRole(ctx, conn, db.Name, cred.Username, newRole); err != nil {
		return err
	}

	target.Role = string(newRole)
	if err := s.memberRepo.Save(nil, target); err != nil {
		return err
	}

	s.audit.Record(caller.ID, &dbID, "UPDATE_MEMBER_ROLE",
		fmt.Sprintf("set role of member %d on %s to %s", memberID, db.Name, newRole))
	return nil
}

func (s *memberService) Remove(ctx context.Context, username string, dbID, memberID uint) error {
	caller, err := s.access.currentUser(nil, username)
	if err != nil {
		return err
	}
	callerMember, err := s.access.requireRole(nil, dbID, caller.ID, models.RoleAdmin)
	if err != nil {
		return err
	}

	target, err := s.memberRepo.GetByID(nil, memberID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("member %d", memberID))
	}
	if target.DbID != dbID {
		return fmt.Errorf("%w: member %d does not belong to database %d", apperrors.ErrNotFound, memberID, dbID)
	}
	if target.UserID == caller.ID {
		return fmt.Errorf("%w: cannot remove yourself", apperrors.ErrBadRequest)
	}
	if target.Role == string(models.RoleOwner) {
		return fmt.Errorf("%w: the OWNER cannot be removed", apperrors.ErrBadRequest)
	}
	if callerMember.Role == string(models.RoleAdmin) && target.Role == string(models.RoleAdmin) {
		return fmt.Errorf("%w: an ADMIN cannot remove another ADMIN", apperrors.ErrForbidden)
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("database %d", dbID))
	}
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, target.UserID)
	if err != nil {
		return orNotFound(err, "member credential")
	}

	conn, err := s.connector.OpenAdmin(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Revoke before drop so a failure partway never leaves a live login
	// with grants; credential row goes before the membership row because
	// the login cleanup above depends on reading it.
	if err := s.engine.RevokeAll(ctx, conn, db.Name, cred.Username); err != nil {
		return err
	}
	if err := s.engine.DropServerUser(ctx, conn, cred.Username); err != nil {
		return err
	}

	tx := s.baseRepo.Begin()
	if err := s.dbUserRepo.Delete(tx, cred); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.memberRepo.Delete(tx, target); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.audit.Record(caller.ID, &dbID, "REMOVE_MEMBER",
		fmt.Sprintf("removed member %d from %s", memberID, db.Name))
	logger.Infof("user %s removed member %d from database %s", username, memberID, db.Name)
	return nil
}
