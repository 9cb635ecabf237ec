package services

import (
	"fmt"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
)

// ProjectService manages the project grouping layer above managed databases.
type ProjectService interface {
	// Create adds a project for the caller. Names are unique per owner.
	Create(username string, req models.ProjectCreateRequest) (*models.Project, error)

	// GetAll lists the caller's projects oldest first.
	GetAll(username string) ([]models.Project, error)

	// Get returns one of the caller's projects by id.
	Get(username string, projectID uint) (*models.Project, error)

	// Delete removes an empty project. Projects still holding databases
	// are rejected with ErrConflict; nothing cascades.
	Delete(username string, projectID uint) error
}

type projectService struct {
	access      *access
	projectRepo repository.ProjectRepository
	dbRepo      repository.DbRepository
}

// NewProjectService creates a new project service instance.
func NewProjectService() ProjectService {
	return &projectService{
		access:      newAccess(),
		projectRepo: repository.NewProjectRepository(),
		dbRepo:      repository.NewDbRepository(),
	}
}

func (s *projectService) Create(username string, req models.ProjectCreateRequest) (*models.Project, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	exists, err := s.projectRepo.ExistsByOwnerAndName(nil, user.ID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: project %q already exists", apperrors.ErrConflict, req.Name)
	}

	project := &models.Project{
		UserID: user.ID,
		Name:   req.Name,
	}
	if err := s.projectRepo.Create(nil, project); err != nil {
		return nil, err
	}

	logger.Infof("user %s created project %s (id=%d)", username, project.Name, project.ID)
	return project, nil
}

func (s *projectService) GetAll(username string) ([]models.Project, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}
	return s.projectRepo.GetAllByOwner(nil, user.ID)
}

func (s *projectService) Get(username string, projectID uint) (*models.Project, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByOwnerAndID(nil, user.ID, projectID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("project %d", projectID))
	}
	return project, nil
}

func (s *projectService) Delete(username string, projectID uint) error {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByOwnerAndID(nil, user.ID, projectID)
	if err != nil {
		return orNotFound(err, fmt.Sprintf("project %d", projectID))
	}

	hasDbs, err := s.dbRepo.ExistsByProject(nil, projectID)
	if err != nil {
		return err
	}
	if hasDbs {
		return fmt.Errorf("%w: project %d still holds databases", apperrors.ErrConflict, projectID)
	}

	if err := s.projectRepo.Delete(nil, project); err != nil {
		return err
	}
	logger.Infof("user %s deleted project %s (id=%d)", username, project.Name, project.ID)
	return nil
}
