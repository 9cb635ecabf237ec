package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mariadbpaas/config"
	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
	"mariadbpaas/utils"
)

// AuthService handles platform account registration and login.
type AuthService interface {
	// Register creates a platform account with a bcrypt-hashed password.
	// Returns ErrConflict when the username or email is already taken.
	Register(req models.RegisterRequest) (*models.User, error)

	// Login exchanges credentials for a signed bearer token.
	// Returns ErrUnauthorized for unknown users and wrong passwords alike.
	Login(req models.LoginRequest) (*models.AuthResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new auth service instance.
func NewAuthService() AuthService {
	return &authService{
		userRepo: repository.NewUserRepository(),
	}
}

func (s *authService) Register(req models.RegisterRequest) (*models.User, error) {
	// The username becomes part of server login names, which are
	// interpolated into grant statements; it must be a safe identifier.
	if err := utils.CheckIdentifier("username", req.Username); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsername(nil, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username %q is already registered", apperrors.ErrConflict, req.Username)
	}

	taken, err = s.userRepo.ExistsByEmail(nil, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email %q is already registered", apperrors.ErrConflict, req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Email:    req.Email,
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		return nil, err
	}

	logger.Infof("registered account %s", user.Username)
	return user, nil
}

func (s *authService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(nil, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, err := utils.GenerateToken(user.Username, []byte(config.Cfg.JWTSecret), config.Cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token}, nil
}
