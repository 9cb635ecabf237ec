package controllers

import (
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var (
	dbSrv    services.DbService
	auditSrv services.AuditLogService
)

// SetDbService replaces the database lifecycle service instance.
// Called from main after the control-plane connection is established,
// and from tests to install mocks.
func SetDbService(s services.DbService) {
	dbSrv = s
}

// SetAuditLogService replaces the audit log service instance.
func SetAuditLogService(s services.AuditLogService) {
	auditSrv = s
}

// createDatabase provisions a tenant database
// @Summary Create a database
// @Description Provisions a physical MariaDB database and returns the owner credential. The password is shown here and on GET only to its holder.
// @Tags Databases
// @Accept json
// @Produce json
// @Param database body models.DbCreateRequest true "Database details"
// @Success 201 {object} models.DbResponse "Database created with credential"
// @Failure 400 {object} ErrorEnvelope "Invalid database name"
// @Failure 409 {object} ErrorEnvelope "Name already in use"
// @Failure 502 {object} ErrorEnvelope "MariaDB server unreachable"
// @Security BearerAuth
// @Router /api/databases [post]
func createDatabase(c *gin.Context) {
	var req models.DbCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Provisioning database %s in project %d", req.Name, req.ProjectID)
	db, err := dbSrv.Create(c.Request.Context(), currentUsername(c), req)
	if err != nil {
		logger.Errorf("Failed to provision database %s: %v", req.Name, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Successfully provisioned database %s with ID: %d", db.Name, db.ID)
	utils.JSONResponse(c, http.StatusCreated, "Database was created successfully", db)
}

// listDatabases lists every database the caller belongs to
// @Summary List databases
// @Tags Databases
// @Produce json
// @Success 200 {array} models.DbResponse
// @Security BearerAuth
// @Router /api/databases [get]
func listDatabases(c *gin.Context) {
	dbs, err := dbSrv.GetAll(currentUsername(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", dbs)
}

// getDatabase returns one database with the caller's credential
// @Summary Get a database
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} models.DbResponse
// @Failure 401 {object} ErrorEnvelope "Not a member"
// @Failure 404 {object} ErrorEnvelope "Database not found"
// @Security BearerAuth
// @Router /api/databases/{id} [get]
func getDatabase(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	db, err := dbSrv.Get(currentUsername(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", db)
}

// deleteDatabase destroys a tenant database
// @Summary Delete a database
// @Description Drops the physical database, every server login on it and all dependent records. OWNER only.
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} MessageEnvelope "Database deleted"
// @Failure 403 {object} ErrorEnvelope "Caller is not the OWNER"
// @Failure 404 {object} ErrorEnvelope "Database not found"
// @Failure 502 {object} ErrorEnvelope "MariaDB server unreachable"
// @Security BearerAuth
// @Router /api/databases/{id} [delete]
func deleteDatabase(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Deleting database with ID: %d", id)
	if err := dbSrv.Delete(c.Request.Context(), currentUsername(c), id); err != nil {
		logger.Errorf("Failed to delete database %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Successfully deleted database with ID: %d", id)
	utils.JSONResponse(c, http.StatusOK, "Database was deleted successfully", nil)
}

// getDatabaseAudit returns the audit trail of a database
// @Summary Get database audit log
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Param page query int false "Page number, zero based"
// @Param pageSize query int false "Entries per page, max 200"
// @Success 200 {object} services.AuditPage
// @Failure 401 {object} ErrorEnvelope "Not a member"
// @Security BearerAuth
// @Router /api/databases/{id}/audit [get]
func getDatabaseAudit(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	page := intQuery(c, "page", 0)
	pageSize := intQuery(c, "pageSize", 50)

	entries, err := auditSrv.GetByDb(currentUsername(c), id, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", entries)
}

// RegisterDbRoutes registers HTTP endpoints for database lifecycle operations.
func RegisterDbRoutes(rg *gin.RouterGroup) {
	dbs := rg.Group("/databases")
	{
		dbs.POST("", createDatabase)
		dbs.GET("", listDatabases)
		dbs.GET("/:id", getDatabase)
		dbs.DELETE("/:id", deleteDatabase)
		dbs.GET("/:id/audit", getDatabaseAudit)
	}
}
