package files

import (
	"net/http"

	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FileController struct {
	fileService *FileService
}

func (c *FileController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/files/:fileId", c.GetFile)
}

// GetFile
// @Summary Download a stored file
// @Description Public; icons are referenced by their URL
// @Tags files
// @Produce octet-stream
// @Param fileId path string true "File ID"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /files/{fileId} [get]
func (c *FileController) GetFile(ctx *gin.Context) {
	fileID, err := uuid.Parse(ctx.Param("fileId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	file, err := c.fileService.GetFile(fileID)
	if err != nil {
		errors_utils.RespondWithError(ctx, logger.GetLogger(), err)
		return
	}

	ctx.Header("Content-Type", file.MimeType)
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.File(c.fileService.GetFilePath(file))
}
