package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

const maxResumeSize = 10 * 1024 * 1024 // 10MB

type ResumeHandler struct {
	service   *service.ResumeService
	validator *validator.Validate
}

func NewResumeHandler(svc *service.ResumeService, v *validator.Validate) *ResumeHandler {
	return &ResumeHandler{
		service:   svc,
		validator: v,
	}
}

// Upload handles POST /api/upload-resume
// @Summary Upload a resume for background processing
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "PDF, DOC or DOCX"
// @Param userId formData string true "user id"
// @Success 200 {object} model.UploadResumeResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/upload-resume [post]
func (h *ResumeHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return response.ValidationError(c, "No file provided", nil)
	}

	userID, err := resolveUserID(c, c.FormValue("userId"))
	if err != nil {
		return serviceError(c, err)
	}
	if userID == "" {
		return response.ValidationError(c, "userId is required", nil)
	}

	if file.Size > maxResumeSize {
		return response.ValidationError(c, "File size exceeds 10MB limit", map[string]interface{}{
			"maxSize":  maxResumeSize,
			"fileSize": file.Size,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ValidationError(c, "Unable to read file", nil)
	}
	defer f.Close()

	result, err := h.service.Upload(c.UserContext(), userID, file.Filename, f, file.Header.Get("Content-Type"))
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// ParseText handles POST /parse-resume
// @Summary Submit already extracted resume text
// @Accept json
// @Produce json
// @Param body body model.ParseResumeRequest true "resume_data and user_id"
// @Success 202 {object} model.ParseResumeResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /parse-resume [post]
func (h *ResumeHandler) ParseText(c *fiber.Ctx) error {
	var req model.ParseResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	result, err := h.service.SubmitText(c.UserContext(), userID, req.ResumeData)
	if err != nil {
		return serviceError(c, err)
	}

	return response.Accepted(c, result)
}
