package controllers

import (
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var authSrv = services.NewAuthService()

// SetAuthService replaces the auth service instance, used by tests.
func SetAuthService(s services.AuthService) {
	authSrv = s
}

// register creates a platform account
// @Summary Register an account
// @Description Creates a new platform account with a hashed password
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body models.RegisterRequest true "Account details"
// @Success 201 {object} models.User "Account created"
// @Failure 400 {object} ErrorEnvelope "Validation error"
// @Failure 409 {object} ErrorEnvelope "Username or email already taken"
// @Router /api/auth/register [post]
func register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	user, err := authSrv.Register(req)
	if err != nil {
		logger.Warnf("registration failed for %s: %v", req.Username, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, "Account was created successfully", user)
}

// login exchanges credentials for a bearer token
// @Summary Log in
// @Description Exchanges username and password for a signed bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse "Token issued"
// @Failure 401 {object} ErrorEnvelope "Invalid credentials"
// @Router /api/auth/login [post]
func login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	auth, err := authSrv.Login(req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Login successful", auth)
}

// RegisterAuthRoutes registers the public authentication endpoints.
func RegisterAuthRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", register)
		auth.POST("/login", login)
	}
}
