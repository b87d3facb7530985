package teams_services

import (
	"crmm/internal/features/audit_logs"
	"crmm/internal/features/notifications"
	teams_interfaces "crmm/internal/features/teams/interfaces"
	teams_repositories "crmm/internal/features/teams/repositories"
	users_services "crmm/internal/features/users/services"
	"crmm/internal/util/logger"
)

var teamRepository = &teams_repositories.TeamRepository{}
var memberRepository = &teams_repositories.MemberRepository{}

var teamService = &TeamService{
	teamRepository,
	memberRepository,
	audit_logs.GetAuditLogService(),
	logger.GetLogger(),
	[]teams_interfaces.ProjectsChangedListener{},
}

var memberService = &MemberService{
	teamService,
	memberRepository,
	notifications.GetNotificationService(),
}

var inviteService = &InviteService{
	teamService,
	teamRepository,
	memberRepository,
	users_services.GetUserService(),
	notifications.GetNotificationService(),
}

func GetTeamService() *TeamService {
	return teamService
}

func GetMemberService() *MemberService {
	return memberService
}

func GetInviteService() *InviteService {
	return inviteService
}
