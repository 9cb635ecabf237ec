package controllers

import (
	"fmt"
	"io"
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var backupSrv services.BackupService

// SetBackupService replaces the backup service instance.
func SetBackupService(s services.BackupService) {
	backupSrv = s
}

// createBackup dumps a database to object storage
// @Summary Create a backup
// @Description Runs mysqldump against the database and uploads the dump to object storage. OWNER or ADMIN only.
// @Tags Backups
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param backup body models.BackupCreateRequest true "Backup details"
// @Success 201 {object} models.BackupResponse "Backup created"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Failure 409 {object} ErrorEnvelope "Dump produced no data"
// @Failure 502 {object} ErrorEnvelope "Dump or upload failed"
// @Security BearerAuth
// @Router /api/databases/{id}/backups [post]
func createBackup(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.BackupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Creating backup for database %d", id)
	backup, err := backupSrv.Create(c.Request.Context(), currentUsername(c), id, req)
	if err != nil {
		logger.Errorf("Failed to back up database %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Successfully backed up database %d to %s", id, backup.FileName)
	utils.JSONResponse(c, http.StatusCreated, "Backup was created successfully", backup)
}

// listBackups lists the backups of a database
// @Summary List backups
// @Tags Backups
// @Produce json
// @Param id path int true "Database ID"
// @Param page query int false "Page number, zero based"
// @Param pageSize query int false "Backups per page, max 200"
// @Success 200 {object} services.BackupPage
// @Failure 401 {object} ErrorEnvelope "Not a member"
// @Security BearerAuth
// @Router /api/databases/{id}/backups [get]
func listBackups(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	page := intQuery(c, "page", 0)
	pageSize := intQuery(c, "pageSize", 20)

	backups, err := backupSrv.List(currentUsername(c), id, page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", backups)
}

// downloadBackup streams a backup dump to the caller
// @Summary Download a backup
// @Tags Backups
// @Produce application/sql
// @Param id path int true "Database ID"
// @Param backupId path int true "Backup ID"
// @Success 200 {file} file "Dump contents"
// @Failure 404 {object} ErrorEnvelope "Backup not found"
// @Security BearerAuth
// @Router /api/databases/{id}/backups/{backupId}/download [get]
func downloadBackup(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	backupID, err := uintParam(c, "backupId")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	body, backup, err := backupSrv.Download(c.Request.Context(), currentUsername(c), id, backupID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.FileName))
	c.Header("Content-Type", "application/sql")
	if backup.FileSize > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", backup.FileSize))
	}
	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.Errorf("Failed to stream backup %d: %v", backupID, err)
	}
}

// restoreBackup replays a stored dump into the database
// @Summary Restore a backup
// @Description Wipes the database objects and replays the stored dump. Individual statement failures are counted, not fatal. OWNER or ADMIN only.
// @Tags Backups
// @Produce json
// @Param id path int true "Database ID"
// @Param backupId path int true "Backup ID"
// @Success 200 {object} models.RestoreResult "Replay outcome"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Failure 404 {object} ErrorEnvelope "Backup not found"
// @Failure 502 {object} ErrorEnvelope "Database unreachable"
// @Security BearerAuth
// @Router /api/databases/{id}/backups/{backupId}/restore [post]
func restoreBackup(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	backupID, err := uintParam(c, "backupId")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Restoring backup %d into database %d", backupID, id)
	result, err := backupSrv.Restore(c.Request.Context(), currentUsername(c), id, backupID)
	if err != nil {
		logger.Errorf("Failed to restore backup %d into database %d: %v", backupID, id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Backup was restored successfully", result)
}

// importSQL replays an uploaded dump into the database
// @Summary Import a SQL dump
// @Description Replays an uploaded dump stream into the database without wiping it first. READWRITE or above.
// @Tags Backups
// @Accept application/sql
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} models.RestoreResult "Replay outcome"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Security BearerAuth
// @Router /api/databases/{id}/import [post]
func importSQL(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	// Multipart uploads carry the dump in the "file" field; otherwise the
	// raw request body is the dump.
	var dump io.Reader = c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		dump = file
	}

	result, err := backupSrv.Import(c.Request.Context(), currentUsername(c), id, dump)
	if err != nil {
		logger.Errorf("Failed to import dump into database %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Dump was imported successfully", result)
}

// deleteBackup removes a backup
// @Summary Delete a backup
// @Description Deletes the object from storage first, then the metadata row. OWNER or ADMIN only.
// @Tags Backups
// @Produce json
// @Param id path int true "Database ID"
// @Param backupId path int true "Backup ID"
// @Success 200 {object} MessageEnvelope "Backup deleted"
// @Failure 404 {object} ErrorEnvelope "Backup not found"
// @Failure 502 {object} ErrorEnvelope "Object storage unreachable"
// @Security BearerAuth
// @Router /api/databases/{id}/backups/{backupId} [delete]
func deleteBackup(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	backupID, err := uintParam(c, "backupId")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := backupSrv.Delete(c.Request.Context(), currentUsername(c), id, backupID); err != nil {
		logger.Errorf("Failed to delete backup %d: %v", backupID, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Backup was deleted successfully", nil)
}

// RegisterBackupRoutes registers HTTP endpoints for backup operations.
func RegisterBackupRoutes(rg *gin.RouterGroup) {
	backups := rg.Group("/databases/:id/backups")
	{
		backups.POST("", createBackup)
		backups.GET("", listBackups)
		backups.GET("/:backupId/download", downloadBackup)
		backups.POST("/:backupId/restore", restoreBackup)
		backups.DELETE("/:backupId", deleteBackup)
	}
	rg.POST("/databases/:id/import", importSQL)
}
