package teams_controllers

import (
	"net/http"

	teams_dto "crmm/internal/features/teams/dto"
	teams_services "crmm/internal/features/teams/services"
	users_middleware "crmm/internal/features/users/middleware"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TeamController struct {
	teamService   *teams_services.TeamService
	memberService *teams_services.MemberService
	inviteService *teams_services.InviteService
}

func (c *TeamController) RegisterRoutes(router *gin.RouterGroup) {
	teamRoutes := router.Group("/teams/:teamId")

	teamRoutes.GET("/members", c.GetMembers)
	teamRoutes.POST("/invite", c.InviteMember)
	teamRoutes.PATCH("/invite", c.AcceptInvite)
	teamRoutes.DELETE("/invite", c.DeclineInvite)
	teamRoutes.POST("/leave", c.LeaveTeam)
	teamRoutes.PATCH("/owner", c.TransferOwnership)
	teamRoutes.POST("/members", c.OverrideOrganisationMember)
	teamRoutes.PATCH("/members/:memberId", c.EditMember)
	teamRoutes.DELETE("/members/:memberId", c.RemoveMember)
}

// GetMembers
// @Summary List team members
// @Description Outsiders only see accepted members
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Success 200 {object} teams_dto.GetMembersResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/members [get]
func (c *TeamController) GetMembers(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	response, err := c.teamService.GetMembers(teamID, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// InviteMember
// @Summary Invite a user to the team
// @Description Accepted members of the parent organisation join project teams without an invite
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param request body teams_dto.InviteMemberRequestDTO true "Username or user id"
// @Success 200 {object} teams_dto.TeamMemberResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/invite [post]
func (c *TeamController) InviteMember(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	var request teams_dto.InviteMemberRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	member, err := c.inviteService.InviteMember(teamID, request.UserSlug, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, teams_dto.ToMemberResponse(member))
}

// AcceptInvite
// @Summary Accept a pending team invite
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /teams/{teamId}/invite [patch]
func (c *TeamController) AcceptInvite(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	if err := c.inviteService.AcceptInvite(teamID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Joined successfully"})
}

// DeclineInvite
// @Summary Decline a pending team invite
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/invite [delete]
func (c *TeamController) DeclineInvite(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	if err := c.inviteService.DeclineInvite(teamID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invite declined"})
}

// LeaveTeam
// @Summary Leave a team
// @Description Owners must transfer ownership first
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /teams/{teamId}/leave [post]
func (c *TeamController) LeaveTeam(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	if err := c.memberService.LeaveTeam(teamID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Left the team"})
}

// TransferOwnership
// @Summary Transfer team ownership
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param request body teams_dto.TransferOwnershipRequestDTO true "New owner"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/owner [patch]
func (c *TeamController) TransferOwnership(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	var request teams_dto.TransferOwnershipRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := c.memberService.TransferOwnership(teamID, &request, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Ownership transferred successfully"})
}

// OverrideOrganisationMember
// @Summary Override an organisation member in a project team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Project team ID"
// @Param request body teams_dto.OverrideOrgMemberRequestDTO true "Member override"
// @Success 200 {object} teams_dto.TeamMemberResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/members [post]
func (c *TeamController) OverrideOrganisationMember(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	var request teams_dto.OverrideOrgMemberRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.memberService.OverrideOrganisationMember(teamID, &request, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// EditMember
// @Summary Edit a member's role and permissions
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param memberId path string true "Team member ID"
// @Param request body teams_dto.EditMemberRequestDTO true "Member changes"
// @Success 200 {object} teams_dto.TeamMemberResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{teamId}/members/{memberId} [patch]
func (c *TeamController) EditMember(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(ctx.Param("memberId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	var request teams_dto.EditMemberRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.memberService.EditMember(teamID, memberID, &request, user)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// RemoveMember
// @Summary Remove a member from the team
// @Description Removing an accepted organisation member also removes them from the organisation's projects
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param memberId path string true "Team member ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /teams/{teamId}/members/{memberId} [delete]
func (c *TeamController) RemoveMember(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := parseTeamID(ctx)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(ctx.Param("memberId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	if err := c.memberService.RemoveMember(teamID, memberID, user); err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func parseTeamID(ctx *gin.Context) (uuid.UUID, bool) {
	teamID, err := uuid.Parse(ctx.Param("teamId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return uuid.Nil, false
	}

	return teamID, true
}
