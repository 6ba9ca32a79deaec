package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafaelleal24/product-catalog/internal/core/logger"
	"github.com/rafaelleal24/product-catalog/internal/core/serviceerrors"
)

const internalErrorMessage = "internal server error"

type ErrorResponse struct {
	Error string `json:"error" example:"SKU already exists"`
}

type ValidationErrorResponse struct {
	Error   string                    `json:"error" example:"validation failed"`
	Details []serviceerrors.FieldError `json:"details"`
}

func HandleError(c *gin.Context, err error) {
	var svcErr *serviceerrors.ServiceError
	if !errors.As(err, &svcErr) {
		// detail is logged, not returned
		logger.Error(c.Request.Context(), "unhandled error", err, map[string]any{
			"http.method": c.Request.Method,
			"http.path":   c.Request.URL.Path,
		})
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
		return
	}

	if svcErr.Kind == serviceerrors.KindValidation {
		details := svcErr.Fields
		if details == nil {
			details = []serviceerrors.FieldError{}
		}
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Error: svcErr.Message, Details: details})
		return
	}

	c.JSON(mapKindToHTTP(svcErr.Kind), ErrorResponse{Error: svcErr.Message})
}

func mapKindToHTTP(kind serviceerrors.ErrorKind) int {
	switch kind {
	case serviceerrors.KindNotFound:
		return http.StatusNotFound
	case serviceerrors.KindConflict:
		return http.StatusConflict
	case serviceerrors.KindUnprocessableEntity, serviceerrors.KindValidation:
		return http.StatusUnprocessableEntity
	case serviceerrors.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
