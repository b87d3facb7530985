package organisations_repositories

import (
	"errors"

	organisations_models "crmm/internal/features/organisations/models"
	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrganisationRepository struct{}

func (r *OrganisationRepository) CreateOrganisation(tx *gorm.DB, organisation *organisations_models.Organisation) error {
	return storage.Tx(tx).Create(organisation).Error
}

// GetOrganisationByID returns nil without an error when the organisation does
// not exist.
func (r *OrganisationRepository) GetOrganisationByID(
	tx *gorm.DB,
	organisationID uuid.UUID,
) (*organisations_models.Organisation, error) {
	return r.first(storage.Tx(tx).Where("id = ?", organisationID))
}

// GetOrganisationForUpdate locks the organisation row until tx ends.
func (r *OrganisationRepository) GetOrganisationForUpdate(
	tx *gorm.DB,
	organisationID uuid.UUID,
) (*organisations_models.Organisation, error) {
	return r.first(tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", organisationID))
}

func (r *OrganisationRepository) GetOrganisationBySlug(slug string) (*organisations_models.Organisation, error) {
	return r.first(storage.GetDb().Where("slug = ?", slug))
}

func (r *OrganisationRepository) GetOrganisationsOfTeams(teamIDs []uuid.UUID) ([]*organisations_models.Organisation, error) {
	var organisations []*organisations_models.Organisation
	if len(teamIDs) == 0 {
		return organisations, nil
	}

	err := storage.GetDb().
		Where("team_id IN ?", teamIDs).
		Order("created_at DESC").
		Find(&organisations).Error

	return organisations, err
}

func (r *OrganisationRepository) UpdateOrganisation(tx *gorm.DB, organisation *organisations_models.Organisation) error {
	return storage.Tx(tx).Save(organisation).Error
}

func (r *OrganisationRepository) DeleteOrganisation(tx *gorm.DB, organisationID uuid.UUID) error {
	return storage.Tx(tx).Delete(&organisations_models.Organisation{}, "id = ?", organisationID).Error
}

func (r *OrganisationRepository) first(query *gorm.DB) (*organisations_models.Organisation, error) {
	var organisation organisations_models.Organisation

	err := query.First(&organisation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &organisation, nil
}
