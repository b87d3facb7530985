package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	errors_utils "crmm/internal/util/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxImageSizeBytes = 512 * 1024

	filesURLPrefix = "/api/v1/files/"
)

var allowedImageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
}

type FileService struct {
	fileRepository *FileRepository
	storagePath    string
	logger         *slog.Logger
}

// SaveImage writes an image to local storage and records it in tx. The type
// is sniffed from the content, the client supplied name is kept for display
// only.
func (s *FileService) SaveImage(tx *gorm.DB, name string, data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, errors_utils.InvalidRequest("File is empty")
	}

	if len(data) > MaxImageSizeBytes {
		return nil, errors_utils.InvalidRequest(
			fmt.Sprintf("File is too large, max size is %d KB", MaxImageSizeBytes/1024),
		)
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		return nil, errors_utils.InvalidRequest(fmt.Sprintf("Unsupported file type %s", mime.String()))
	}

	file := &File{
		ID:             uuid.New(),
		Name:           filepath.Base(name),
		Size:           int64(len(data)),
		MimeType:       mime.String(),
		StorageService: StorageServiceLocal,
		CreatedAt:      time.Now().UTC(),
	}
	file.URL = filesURLPrefix + file.ID.String()

	diskPath := s.diskPath(file.ID, mime.Extension())
	if err := os.MkdirAll(filepath.Dir(diskPath), 0o755); err != nil {
		return nil, errors_utils.Server("failed to create storage directory", err)
	}

	if err := os.WriteFile(diskPath, data, 0o644); err != nil {
		return nil, errors_utils.Server("failed to write file", err)
	}

	if err := s.fileRepository.Create(tx, file); err != nil {
		s.removeFromDisk(file)
		return nil, errors_utils.Server("failed to save file", err)
	}

	return file, nil
}

func (s *FileService) GetFile(id uuid.UUID) (*File, error) {
	file, err := s.fileRepository.GetByID(nil, id)
	if err != nil {
		return nil, errors_utils.Server("failed to get file", err)
	}

	if file == nil {
		return nil, errors_utils.NotFound("File not found")
	}

	return file, nil
}

// GetFilePath is where the content of file lives on disk.
func (s *FileService) GetFilePath(file *File) string {
	extension := ""
	if mime := mimetype.Lookup(file.MimeType); mime != nil {
		extension = mime.Extension()
	}

	return s.diskPath(file.ID, extension)
}

// DeleteFile removes the record in tx and returns it. The content stays on
// disk until RemoveContent is called after commit.
func (s *FileService) DeleteFile(tx *gorm.DB, id uuid.UUID) (*File, error) {
	file, err := s.fileRepository.GetByID(tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if file == nil {
		return nil, nil
	}

	if err := s.fileRepository.Delete(tx, id); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	return file, nil
}

func (s *FileService) RemoveContent(files ...*File) {
	for _, file := range files {
		if file != nil {
			s.removeFromDisk(file)
		}
	}
}

func (s *FileService) removeFromDisk(file *File) {
	if err := os.Remove(s.GetFilePath(file)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove file content", "fileId", file.ID, "error", err)
	}
}

func (s *FileService) diskPath(id uuid.UUID, extension string) string {
	return filepath.Join(s.storagePath, "files", id.String()+extension)
}
