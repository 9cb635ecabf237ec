package controllers

import (
	"net/http"

	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var dashboardSrv services.DashboardService

// SetDashboardService replaces the dashboard service instance.
func SetDashboardService(s services.DashboardService) {
	dashboardSrv = s
}

// getDashboard returns the caller's totals
// @Summary Get dashboard totals
// @Description Returns the caller's project, database and backup counts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.Dashboard
// @Security BearerAuth
// @Router /api/dashboard [get]
func getDashboard(c *gin.Context) {
	summary, err := dashboardSrv.Summary(currentUsername(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", summary)
}

// RegisterDashboardRoutes registers the dashboard endpoint.
func RegisterDashboardRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", getDashboard)
}
