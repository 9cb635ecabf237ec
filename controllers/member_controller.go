package controllers

import (
	"net/http"

	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

var memberSrv services.MemberService

// SetMemberService replaces the membership service instance.
func SetMemberService(s services.MemberService) {
	memberSrv = s
}

// listMembers lists the members of a database
// @Summary List database members
// @Tags Members
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {array} models.DbMemberResponse
// @Failure 401 {object} ErrorEnvelope "Not a member"
// @Security BearerAuth
// @Router /api/databases/{id}/members [get]
func listMembers(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	members, err := memberSrv.List(currentUsername(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "OK", members)
}

// addMember grants a platform user a role on a database
// @Summary Add a member
// @Description Adds a platform user with ADMIN, READWRITE or READONLY and provisions their server login. OWNER or ADMIN only.
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param member body models.MemberAddRequest true "Member to add"
// @Success 201 {object} models.DbMemberResponse "Member added"
// @Failure 400 {object} ErrorEnvelope "Unknown role or OWNER requested"
// @Failure 404 {object} ErrorEnvelope "User not found"
// @Failure 409 {object} ErrorEnvelope "Already a member"
// @Security BearerAuth
// @Router /api/databases/{id}/members [post]
func addMember(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.MemberAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	member, err := memberSrv.Add(c.Request.Context(), currentUsername(c), id, req)
	if err != nil {
		logger.Errorf("Failed to add member %s to database %d: %v", req.Username, id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, "Member was added successfully", member)
}

// updateMemberRole changes a member's role
// @Summary Update a member's role
// @Description Changes a member's role and reapplies their server grants. OWNER only; never on yourself; never to or from OWNER.
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param memberId path int true "Membership ID"
// @Param role body models.MemberRoleRequest true "New role"
// @Success 200 {object} MessageEnvelope "Role updated"
// @Failure 400 {object} ErrorEnvelope "Invalid role change"
// @Failure 403 {object} ErrorEnvelope "Caller is not the OWNER"
// @Security BearerAuth
// @Router /api/databases/{id}/members/{memberId}/role [put]
func updateMemberRole(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	memberID, err := uintParam(c, "memberId")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	var req models.MemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := memberSrv.UpdateRole(c.Request.Context(), currentUsername(c), id, memberID, req); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Member role was updated successfully", nil)
}

// removeMember deletes a membership
// @Summary Remove a member
// @Description Removes a member and drops their server login. OWNER or ADMIN; an ADMIN cannot remove another ADMIN.
// @Tags Members
// @Produce json
// @Param id path int true "Database ID"
// @Param memberId path int true "Membership ID"
// @Success 200 {object} MessageEnvelope "Member removed"
// @Failure 400 {object} ErrorEnvelope "Invalid removal"
// @Failure 403 {object} ErrorEnvelope "Insufficient role"
// @Security BearerAuth
// @Router /api/databases/{id}/members/{memberId} [delete]
func removeMember(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	memberID, err := uintParam(c, "memberId")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	if err := memberSrv.Remove(c.Request.Context(), currentUsername(c), id, memberID); err != nil {
		logger.Errorf("Failed to remove member %d from database %d: %v", memberID, id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, "Member was removed successfully", nil)
}

// RegisterMemberRoutes registers HTTP endpoints for membership management.
func RegisterMemberRoutes(rg *gin.RouterGroup) {
	members := rg.Group("/databases/:id/members")
	{
		members.GET("", listMembers)
		members.POST("", addMember)
		members.PUT("/:memberId/role", updateMemberRole)
		members.DELETE("/:memberId", removeMember)
	}
}
