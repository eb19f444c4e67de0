package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/services"
	"resumebuilder/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	exposeOTP     bool
	maxPhotoBytes int64
}

// NewAuthHandler creates a new AuthHandler. When exposeOTP is set the send-otp response
// includes the issued code.
func NewAuthHandler(authService *services.AuthService, exposeOTP bool, maxPhotoBytes int64) *AuthHandler {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = storage.DefaultMaxPhotoBytes
	}
	return &AuthHandler{
		authService:   authService,
		validate:      validator.New(),
		exposeOTP:     exposeOTP,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// RegisterRoutes registers the authentication routes. authRequired guards /me.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", authRequired, h.HandleMe)
	authRoutes.Post("/send-otp", h.HandleSendOTP)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
}

// SignupRequest is the multipart form or JSON body sent on signup.
type SignupRequest struct {
	FullName      string     `json:"fullName" form:"fullName"`
	Email         string     `json:"email" form:"email"`
	Mobile        string     `json:"mobile" form:"mobile"`
	Password      string     `json:"password" form:"password"`
	Language      string     `json:"language" form:"language"`
	TermsAccepted acceptance `json:"termsAccepted" form:"termsAccepted"`
}

// acceptance is a checkbox value: "true" in a form, true or "true" in JSON.
type acceptance bool

func (a *acceptance) UnmarshalText(text []byte) error {
	*a = string(text) == "true"
	return nil
}

func (a *acceptance) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*a = acceptance(t)
	case string:
		*a = t == "true"
	case nil:
		*a = false
	default:
		return fmt.Errorf("termsAccepted: unexpected value %s", data)
	}
	return nil
}

// HandleSignup registers a user, optionally with a profile photo.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	in := services.SignupInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Mobile:        req.Mobile,
		Password:      req.Password,
		Language:      req.Language,
		TermsAccepted: bool(req.TermsAccepted),
	}

	fh, err := c.FormFile("photo")
	switch {
	case err == nil:
		photo, err := readPhoto(fh, h.maxPhotoBytes)
		if err != nil {
			return respondError(c, err, fiber.StatusBadRequest)
		}
		in.Photo = photo
	case errors.Is(err, fasthttp.ErrMissingFile), errors.Is(err, fasthttp.ErrNoMultipartForm):
		// signup without a photo
	default:
		return invalidBody(c, err)
	}

	result, err := h.authService.Signup(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

func readPhoto(fh *multipart.FileHeader, maxBytes int64) (*storage.PhotoUpload, error) {
	if fh.Size > maxBytes {
		return nil, apperrors.Validation(fmt.Sprintf("photo exceeds the %d byte limit", maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded photo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.Validation(fmt.Sprintf("photo exceeds the %d byte limit", maxBytes))
	}
	return &storage.PhotoUpload{Filename: fh.Filename, Data: data}, nil
}

// LoginRequest represents the request body for login. Identifier may be an email or a
// mobile number; Email is accepted for older clients and holds either as well.
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		return respondError(c, apperrors.Validation("email and password are required"), fiber.StatusBadRequest)
	}

	result, err := h.authService.Login(c.UserContext(), identifier, req.Password)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token is not valid"})
	}
	return c.JSON(fiber.Map{"user": user})
}

type sendOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
}

// HandleSendOTP issues a verification code for a registered mobile number.
func (h *AuthHandler) HandleSendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	code, err := h.authService.RequestOTP(c.UserContext(), req.Mobile)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	body := fiber.Map{"message": "OTP sent successfully"}
	if h.exposeOTP {
		body["otp"] = code
	}
	return c.JSON(body)
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

// HandleVerifyOTP marks the mobile number verified when the code matches.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	if err := h.authService.VerifyOTP(c.UserContext(), req.Mobile, req.OTP); err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{"message": "Mobile number verified successfully"})
}
