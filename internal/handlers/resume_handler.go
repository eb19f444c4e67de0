package handlers

import (
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ResumeHandler handles HTTP requests for the caller's resume.
type ResumeHandler struct {
	service *services.ResumeService
}

// NewResumeHandler creates a new ResumeHandler.
func NewResumeHandler(service *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		service: service,
	}
}

// RegisterRoutes registers the resume routes. Every route requires authRequired.
func (h *ResumeHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	resumeRoutes := router.Group("/resume", authRequired)
	resumeRoutes.Get("/", h.HandleGetResume)
	resumeRoutes.Post("/", h.HandleSaveResume)
	resumeRoutes.Put("/", h.HandleReplaceResume)
	resumeRoutes.Delete("/", h.HandleDeleteResume)
}

// HandleGetResume returns the caller's resume.
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	resume, err := h.service.Get(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(fiber.Map{"resume": resume})
}

// HandleSaveResume creates the caller's resume or replaces it wholesale.
func (h *ResumeHandler) HandleSaveResume(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var in models.ResumeInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	resume, err := h.service.Save(c.UserContext(), user.ID, in)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(fiber.Map{
		"message": "Resume saved successfully",
		"resume":  resume,
	})
}

// HandleReplaceResume replaces an existing resume and answers 404 when there is none.
func (h *ResumeHandler) HandleReplaceResume(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var in models.ResumeInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	resume, err := h.service.Replace(c.UserContext(), user.ID, in)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(fiber.Map{
		"message": "Resume updated successfully",
		"resume":  resume,
	})
}

// HandleDeleteResume deletes the caller's resume.
func (h *ResumeHandler) HandleDeleteResume(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.service.Delete(c.UserContext(), user.ID); err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(fiber.Map{"message": "Resume deleted successfully"})
}
