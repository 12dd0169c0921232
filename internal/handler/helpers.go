package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const uploadField = "file"

var formValidator = validator.New()

// bindForm binds a JSON or form body into req and validates it.
// On failure the response is already written.
func bindForm(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := formValidator.Struct(req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// saveUpload stores the optional multipart "file" and returns the stored
// path, or "" when no file was sent.
func saveUpload(c *gin.Context, images storage.Storage) (string, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return images.Save(c.Request.Context(), header.Filename, file, header.Header.Get("Content-Type"), header.Size)
}

// handleServiceError maps service errors to HTTP status codes
func handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrItemNotFound),
		errors.Is(err, common.ErrReviewNotFound),
		errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, common.ErrForbidden),
		errors.Is(err, common.ErrOwnItem),
		errors.Is(err, common.ErrReviewNotAllowed):
		common.ErrorResponse(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, common.ErrAlreadySold),
		errors.Is(err, common.ErrUserAlreadyExists):
		common.ErrorResponse(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthorized):
		common.ErrorResponse(c, http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, common.ErrStoreUnavailable):
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Database unavailable", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
	}
}
