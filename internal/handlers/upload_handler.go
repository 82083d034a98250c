package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/utils"
	"cybersite/internal/utils/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,

	// office
	"application/msword":            true,
	"application/vnd.ms-excel":      true,
	"application/vnd.ms-powerpoint": true,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,

	"application/zip":              true,
	"application/x-zip-compressed": true,
	"text/plain":                   true,
	"text/csv":                     true,
}

type UploadHandler struct {
	storage services.Storage
	maxSize int64
	log     *logger.Logger
}

func NewUploadHandler(storage services.Storage, maxSize int64) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		maxSize: maxSize,
		log:     logger.New("upload_handler"),
	}
}

type DeleteUploadRequest struct {
	Key string `json:"key" validate:"required"`
}

// sniffContentType detects the media type from the file bytes; the
// declared part header and the extension are ignored.
func sniffContentType(data []byte) string {
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}

func readPart(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && allowedUploadTypes[contentType]
}

// UploadFile stores a campaign or resource attachment
// @Summary Upload a file
// @Description Upload an attachment to object storage
// @Tags uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]models.Attachment "Uploaded attachment"
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/upload [post]
func (h *UploadHandler) UploadFile(c echo.Context) error {
	if !strings.HasPrefix(c.Request().Header.Get("Content-Type"), "multipart/form-data") {
		return echo.NewHTTPError(http.StatusBadRequest, "Content-Type must be multipart/form-data")
	}
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}
	if file.Size > h.maxSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("file is larger than %s", utils.HumanSize(h.maxSize)))
	}
	content, err := readPart(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	contentType := sniffContentType(content)
	if !allowedUploadTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType))
	}

	obj, err := h.storage.Upload(c.Request().Context(), content, file.Filename, contentType, "attachments")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload file").SetInternal(err)
	}

	h.log.Success("File uploaded successfully: %s", obj.URL)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"attachment": models.Attachment{
			ID:   uuid.NewString(),
			Name: file.Filename,
			URL:  obj.URL,
			Key:  obj.Key,
			Size: file.Size,
			Type: contentType,
		},
	})
}

// DeleteFile removes an uploaded object
// @Summary Delete an uploaded file
// @Tags uploads
// @Security BearerAuth
// @Accept json
// @Param request body DeleteUploadRequest true "Object key"
// @Success 204 "No content"
// @Router /api/admin/upload [delete]
func (h *UploadHandler) DeleteFile(c echo.Context) error {
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}
	var req DeleteUploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.Contains(req.Key, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}

	if err := h.storage.Delete(c.Request().Context(), req.Key); err != nil {
		return controllers.ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
