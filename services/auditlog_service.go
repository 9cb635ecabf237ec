package services

import (
	"fmt"
	"sync"
	"time"

	"mariadbpaas/config"
	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
)

// AuditPage is one page of audit entries with the total count.
type AuditPage struct {
	Entries  []models.AuditLogResponse `json:"entries"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
}

// AuditLogService records activity without blocking the operation being
// audited. Entries flow through a buffered channel to one writer goroutine;
// when the queue is full the entry is dropped and a warning logged, never
// stalling the caller.
type AuditLogService interface {
	// Record queues one audit entry. Fire and forget.
	Record(userID uint, dbID *uint, action, details string)

	// GetByDb returns audit entries for a database, newest first. The
	// caller must be a member.
	GetByDb(username string, dbID uint, page, pageSize int) (*AuditPage, error)

	// Close stops accepting entries and waits for the queue to flush.
	Close()
}

type auditLogService struct {
	access    *access
	auditRepo repository.AuditLogRepository
	userRepo  repository.UserRepository
	dbRepo    repository.DbRepository

	queue  chan models.AuditLog
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// NewAuditLogService creates the audit service and starts its writer.
func NewAuditLogService() AuditLogService {
	size := config.Cfg.AuditQueueSize
	if size <= 0 {
		size = 256
	}
	s := &auditLogService{
		access:    newAccess(),
		auditRepo: repository.NewAuditLogRepository(),
		userRepo:  repository.NewUserRepository(),
		dbRepo:    repository.NewDbRepository(),
		queue:     make(chan models.AuditLog, size),
		done:      make(chan struct{}),
	}
	s.wg.Add(1)
	go s.writer()
	return s
}

func (s *auditLogService) writer() {
	defer s.wg.Done()
	for {
		select {
		case entry := <-s.queue:
			s.persist(entry)
		case <-s.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case entry := <-s.queue:
					s.persist(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *auditLogService) persist(entry models.AuditLog) {
	if err := s.auditRepo.Create(nil, &entry); err != nil {
		logger.Errorf("audit write failed for action %s: %v", entry.Action, err)
	}
}

func (s *auditLogService) Record(userID uint, dbID *uint, action, details string) {
	entry := models.AuditLog{
		UserID:    userID,
		DbID:      dbID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	select {
	case s.queue <- entry:
	default:
		logger.Warnf("audit entry %s dropped: queue full", action)
	}
}

func (s *auditLogService) Close() {
	s.closed.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *auditLogService) GetByDb(username string, dbID uint, page, pageSize int) (*AuditPage, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, models.RoleReadOnly); err != nil {
		return nil, err
	}

	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	total, err := s.auditRepo.CountByDb(nil, dbID)
	if err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.GetByDbPaged(nil, dbID, page*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}

	responses := make([]models.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		resp := models.AuditLogResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			DbID:      e.DbID,
			DbName:    db.Name,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if actor, err := s.userRepo.GetByID(nil, e.UserID); err == nil {
			resp.UserName = actor.Username
		}
		responses = append(responses, resp)
	}

	return &AuditPage{
		Entries:  responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
