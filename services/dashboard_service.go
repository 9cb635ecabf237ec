package services

import (
	"mariadbpaas/models"
	"mariadbpaas/repository"
)

// DashboardService aggregates per-user totals for the landing page.
type DashboardService interface {
	Summary(username string) (*models.Dashboard, error)
}

type dashboardService struct {
	access      *access
	projectRepo repository.ProjectRepository
	memberRepo  repository.DbMemberRepository
	backupRepo  repository.BackupRepository
}

// NewDashboardService creates a new dashboard service instance.
func NewDashboardService() DashboardService {
	return &dashboardService{
		access:      newAccess(),
		projectRepo: repository.NewProjectRepository(),
		memberRepo:  repository.NewDbMemberRepository(),
		backupRepo:  repository.NewBackupRepository(),
	}
}

func (s *dashboardService) Summary(username string) (*models.Dashboard, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.CountByOwner(nil, user.ID)
	if err != nil {
		return nil, err
	}

	// Databases are counted through memberships, so shared databases show
	// up for every member, not only the owner.
	memberships, err := s.memberRepo.GetAllByUser(nil, user.ID)
	if err != nil {
		return nil, err
	}

	var backups int64
	for _, m := range memberships {
		n, err := s.backupRepo.CountByDb(nil, m.DbID)
		if err != nil {
			return nil, err
		}
		backups += n
	}

	return &models.Dashboard{
		TotalProjects:  projects,
		TotalDatabases: int64(len(memberships)),
		TotalBackups:   backups,
	}, nil
}
