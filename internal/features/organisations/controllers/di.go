package organisations_controllers

import (
	organisations_services "crmm/internal/features/organisations/services"
)

var organisationController = &OrganisationController{
	organisations_services.GetOrganisationService(),
}

func GetOrganisationController() *OrganisationController {
	return organisationController
}
