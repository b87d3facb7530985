package users_models

import "github.com/google/uuid"

type UsersSettings struct {
	ID uuid.UUID `json:"id"                                   gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	// any visitor can register via the sign up form
	IsAllowExternalRegistrations bool `json:"isAllowExternalRegistrations"         gorm:"column:is_allow_external_registrations"`
	// users with the plain "user" role can create projects
	IsMemberAllowedToCreateProjects bool `json:"isMemberAllowedToCreateProjects"      gorm:"column:is_member_allowed_to_create_projects"`
	// users with the plain "user" role can create organisations
	IsMemberAllowedToCreateOrganisations bool `json:"isMemberAllowedToCreateOrganisations" gorm:"column:is_member_allowed_to_create_organisations"`
}

func (UsersSettings) TableName() string {
	return "users_settings"
}
