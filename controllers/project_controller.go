package controllers

import (
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var projectSrv = services.NewProjectService()

// SetProjectService replaces the project service instance, used by tests.
func SetProjectService(s services.ProjectService) {
	projectSrv = s
}

// createProject creates a project
// @Summary Create a project
// @Description Creates a project owned by the caller; names are unique per owner
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.ProjectCreateRequest true "Project details"
// @Success 201 {object} models.Project "Project created"
// @Failure 409 {object} ErrorEnvelope "Name already in use"
// @Security BearerAuth
// @Router /api/projects [post]
func createProject(c *gin.Context) {
	var req models.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	project, err := projectSrv.Create(currentUsername(c), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Created project %s (id=%d)", project.Name, project.ID)
	utils.JSONResponse(c, http.StatusCreated, "Project was created successfully", project)
}

// listProjects lists the caller's projects
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Security BearerAuth
// @Router /api/projects [get]
func listProjects(c *gin.Context) {
	projects, err := projectSrv.GetAll(currentUsername(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", projects)
}

// getProject returns one project
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorEnvelope "Project not found"
// @Security BearerAuth
// @Router /api/projects/{id} [get]
func getProject(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	project, err := projectSrv.Get(currentUsername(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", project)
}

// listProjectDatabases lists the databases of one project
// @Summary List databases in a project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} models.DbResponse
// @Failure 404 {object} ErrorEnvelope "Project not found"
// @Security BearerAuth
// @Router /api/projects/{id}/databases [get]
func listProjectDatabases(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	dbs, err := dbSrv.GetAllByProject(currentUsername(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", dbs)
}

// deleteProject deletes an empty project
// @Summary Delete a project
// @Description Deletes a project; fails with 409 while it still holds databases
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} MessageEnvelope "Project deleted"
// @Failure 404 {object} ErrorEnvelope "Project not found"
// @Failure 409 {object} ErrorEnvelope "Project still holds databases"
// @Security BearerAuth
// @Router /api/projects/{id} [delete]
func deleteProject(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := projectSrv.Delete(currentUsername(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Project was deleted successfully", nil)
}

// RegisterProjectRoutes registers HTTP endpoints for project management.
func RegisterProjectRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.POST("", createProject)
		projects.GET("", listProjects)
		projects.GET("/:id", getProject)
		projects.GET("/:id/databases", listProjectDatabases)
		projects.DELETE("/:id", deleteProject)
	}
}
