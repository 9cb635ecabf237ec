package controllers

import (
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var tableSrv services.TableService

// SetTableService replaces the table service instance.
func SetTableService(s services.TableService) {
	tableSrv = s
}

// createTable creates a table inside a tenant database
// @Summary Create a table
// @Description Creates a table from an abstract column list. READWRITE or above.
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table body models.TableCreateRequest true "Table definition"
// @Success 201 {object} MessageEnvelope "Table created"
// @Failure 400 {object} ErrorEnvelope "Invalid identifier"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Security BearerAuth
// @Router /api/databases/{id}/tables [post]
func createTable(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.TableCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.CreateTable(c.Request.Context(), currentUsername(c), id, req); err != nil {
		logger.Errorf("Failed to create table %s in database %d: %v", req.TableName, id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, "Table was created successfully", nil)
}

// listTables lists the tables of a tenant database
// @Summary List tables
// @Tags Tables
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {array} models.TableInfo
// @Security BearerAuth
// @Router /api/databases/{id}/tables [get]
func listTables(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	tables, err := tableSrv.GetTables(c.Request.Context(), currentUsername(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", tables)
}

// getTableStructure returns the structure of one table
// @Summary Get table structure
// @Tags Tables
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Success 200 {object} models.TableStructure
// @Failure 404 {object} ErrorEnvelope "Table not found"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/structure [get]
func getTableStructure(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	structure, err := tableSrv.GetTableStructure(c.Request.Context(), currentUsername(c), id, c.Param("table"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", structure)
}

// getTableData returns one page of rows
// @Summary Get table data
// @Tags Tables
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param page query int false "Page number, zero based"
// @Param pageSize query int false "Rows per page, max 500"
// @Success 200 {object} models.TableData
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/data [get]
func getTableData(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	page := intQuery(c, "page", 0)
	pageSize := intQuery(c, "pageSize", 50)

	data, err := tableSrv.GetTableData(c.Request.Context(), currentUsername(c), id, c.Param("table"), page, pageSize)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", data)
}

// alterTable applies column changes to a table
// @Summary Alter a table
// @Description Applies add, drop and modify column lists in order. Statements run sequentially without rollback.
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param changes body models.TableAlterRequest true "Column changes"
// @Success 200 {object} MessageEnvelope "Table altered"
// @Failure 400 {object} ErrorEnvelope "Invalid identifier"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table} [put]
func alterTable(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.TableAlterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.AlterTable(c.Request.Context(), currentUsername(c), id, c.Param("table"), req); err != nil {
		logger.Errorf("Failed to alter table %s in database %d: %v", c.Param("table"), id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Table was altered successfully", nil)
}

// renameTable renames a table
// @Summary Rename a table
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param rename body models.TableRenameRequest true "New name"
// @Success 200 {object} MessageEnvelope "Table renamed"
// @Failure 400 {object} ErrorEnvelope "Invalid identifier"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/rename [put]
func renameTable(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.TableRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.RenameTable(c.Request.Context(), currentUsername(c), id, c.Param("table"), req.NewName); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Table was renamed successfully", nil)
}

// dropTable drops a table
// @Summary Drop a table
// @Tags Tables
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Success 200 {object} MessageEnvelope "Table dropped"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table} [delete]
func dropTable(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.DropTable(c.Request.Context(), currentUsername(c), id, c.Param("table")); err != nil {
		logger.Errorf("Failed to drop table %s in database %d: %v", c.Param("table"), id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Table was dropped successfully", nil)
}

// insertRows inserts rows into a table
// @Summary Insert rows
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param rows body models.RowRequest true "Rows to insert"
// @Success 201 {object} MessageEnvelope "Rows inserted"
// @Failure 400 {object} ErrorEnvelope "Invalid column name"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/rows [post]
func insertRows(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.RowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.InsertRows(c.Request.Context(), currentUsername(c), id, c.Param("table"), req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, "Rows were inserted successfully", nil)
}

// updateRows updates rows by id
// @Summary Update rows
// @Description Pairs ids with data positionally; rows whose id no longer exists are skipped.
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param rows body models.RowRequest true "Ids and new values"
// @Success 200 {object} MessageEnvelope "Rows updated"
// @Failure 400 {object} ErrorEnvelope "Invalid column name"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/rows [put]
func updateRows(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.RowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.UpdateRows(c.Request.Context(), currentUsername(c), id, c.Param("table"), req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Rows were updated successfully", nil)
}

// deleteRows deletes rows by id
// @Summary Delete rows
// @Description Deletes the listed ids; 404 when none of them matched.
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param table path string true "Table name"
// @Param rows body models.RowRequest true "Ids to delete"
// @Success 200 {object} MessageEnvelope "Rows deleted"
// @Failure 404 {object} ErrorEnvelope "No rows matched"
// @Security BearerAuth
// @Router /api/databases/{id}/tables/{table}/rows [delete]
func deleteRows(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.RowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := tableSrv.DeleteRows(c.Request.Context(), currentUsername(c), id, c.Param("table"), req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Rows were deleted successfully", nil)
}

// RegisterTableRoutes registers HTTP endpoints for tenant table operations.
func RegisterTableRoutes(rg *gin.RouterGroup) {
	tables := rg.Group("/databases/:id/tables")
	{
		tables.POST("", createTable)
		tables.GET("", listTables)
		tables.GET("/:table/structure", getTableStructure)
		tables.GET("/:table/data", getTableData)
		tables.PUT("/:table", alterTable)
		tables.PUT("/:table/rename", renameTable)
		tables.DELETE("/:table", dropTable)
		tables.POST("/:table/rows", insertRows)
		tables.PUT("/:table/rows", updateRows)
		tables.DELETE("/:table/rows", deleteRows)
	}
}
