package teams_controllers

import (
	teams_services "crmm/internal/features/teams/services"
)

var teamController = &TeamController{
	teams_services.GetTeamService(),
	teams_services.GetMemberService(),
	teams_services.GetInviteService(),
}

func GetTeamController() *TeamController {
	return teamController
}
