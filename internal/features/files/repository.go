package files

import (
	"errors"

	"crmm/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository struct{}

func (r *FileRepository) Create(tx *gorm.DB, file *File) error {
	return storage.Tx(tx).Create(file).Error
}

func (r *FileRepository) GetByID(tx *gorm.DB, id uuid.UUID) (*File, error) {
	var file File

	if err := storage.Tx(tx).Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &file, nil
}

func (r *FileRepository) Delete(tx *gorm.DB, id uuid.UUID) error {
	return storage.Tx(tx).Where("id = ?", id).Delete(&File{}).Error
}
