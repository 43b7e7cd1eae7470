package handler

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/middleware"
	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

var errIdentityMismatch = errors.New("userId does not match the authenticated user")

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

// resolveUserID reconciles the user id sent by the client with the one in
// the bearer token, when auth is enabled.
func resolveUserID(c *fiber.Ctx, requested string) (string, error) {
	authed := middleware.GetUserID(c)
	if authed == "" {
		return requested, nil
	}
	if requested != "" && requested != authed {
		return "", errIdentityMismatch
	}
	return authed, nil
}

// serviceError maps service sentinels to the error envelope. Anything
// unexpected is logged and hidden behind a generic message.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errIdentityMismatch):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUserIDRequired),
		errors.Is(err, service.ErrQueryRequired),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrEmptyResumeText):
		return response.ValidationError(c, err.Error(), nil)
	case errors.Is(err, service.ErrUnsupportedFormat):
		return response.UnsupportedFormat(c, "Unsupported file type. Use PDF, DOC or DOCX.")
	case errors.Is(err, client.ErrNotConfigured):
		return response.AIError(c, "Language model is not configured")
	}

	log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	return response.ServiceError(c, "Internal server error")
}
