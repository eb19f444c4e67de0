package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/events"
	"resumebuilder/internal/models"
	"resumebuilder/internal/ratelimit"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL   = 7 * 24 * time.Hour
	DefaultOTPTTL     = 10 * time.Minute
	DefaultBcryptCost = 12
	otpDigits         = 6
)

// Client-facing messages. Login uses one message for unknown identifiers and wrong
// passwords alike.
const (
	msgInvalidCredentials = "invalid credentials"
	msgInvalidToken       = "token is not valid"
	msgInvalidOTP         = "invalid or expired OTP"
)

// AuthConfig tunes the AuthService. Zero values fall back to the defaults above.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	OTPTTL     time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Claims are the session token claims.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.StandardClaims
}

// SignupInput carries a signup request. Empty Email or Mobile means absent.
type SignupInput struct {
	FullName      string
	Email         string
	Mobile        string
	Password      string
	Language      string
	TermsAccepted bool
	Photo         *storage.PhotoUpload
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string           `json:"token"`
	User  *models.UserView `json:"user"`
}

// AuthService handles business logic for authentication and mobile verification.
type AuthService struct {
	userRepo   repositories.UserRepository
	photos     storage.PhotoStore
	limiter    ratelimit.Limiter
	publisher  events.Publisher
	validate   *validator.Validate
	jwtSecret  []byte
	tokenTTL   time.Duration
	otpTTL     time.Duration
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService. photos, limiter and publisher may be nil.
func NewAuthService(
	userRepo repositories.UserRepository,
	photos storage.PhotoStore,
	limiter ratelimit.Limiter,
	publisher events.Publisher,
	cfg AuthConfig,
) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		photos:     photos,
		limiter:    limiter,
		publisher:  publisher,
		validate:   validator.New(),
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		otpTTL:     cfg.OTPTTL,
		bcryptCost: cfg.BcryptCost,
		now:        cfg.Now,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = DefaultTokenTTL
	}
	if s.otpTTL <= 0 {
		s.otpTTL = DefaultOTPTTL
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = DefaultBcryptCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.limiter == nil {
		s.limiter = ratelimit.Noop{}
	}
	return s
}

// HashPassword hashes password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.Validation("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Signup validates the request, stores the user and returns a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Language = strings.TrimSpace(in.Language)

	if in.FullName == "" || in.Password == "" || in.Language == "" {
		return nil, apperrors.Validation("required fields are missing")
	}
	if in.Email == "" && in.Mobile == "" {
		return nil, apperrors.Validation("either email or mobile number is required")
	}
	if !in.TermsAccepted {
		return nil, apperrors.Validation("you must accept the terms and conditions")
	}
	if in.Email != "" {
		if err := s.validate.Var(in.Email, "email,max=255"); err != nil {
			return nil, apperrors.ValidationFields("invalid email", map[string]string{"email": "must be a valid email address"})
		}
	}
	if in.Mobile != "" {
		if err := s.validate.Var(in.Mobile, "max=32,excludesall=@"); err != nil {
			return nil, apperrors.ValidationFields("invalid mobile number", map[string]string{"mobile": "must be a phone number of at most 32 characters"})
		}
	}

	user := &models.User{
		FullName: in.FullName,
		Language: in.Language,
	}
	if in.Email != "" {
		user.Email = &in.Email
	}
	if in.Mobile != "" {
		user.Mobile = &in.Mobile
	}

	exists, err := s.userRepo.ExistsByEmailOrMobile(ctx, user.Email, user.Mobile)
	if err != nil {
		return nil, classify("signup", err)
	}
	if exists {
		return nil, apperrors.Conflict("user already exists with this email or mobile number")
	}

	hashed, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, classify("signup", err)
	}
	user.Password = hashed

	if in.Photo != nil {
		if s.photos == nil {
			return nil, apperrors.Internal(errors.New("photo storage is not configured"))
		}
		ref, err := s.photos.Save(ctx, *in.Photo)
		if err != nil {
			return nil, classify("store photo", err)
		}
		user.Photo = &ref
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.discardPhoto(user.Photo)
		return nil, classify("create user", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, classify("signup", err)
	}

	events.PublishBestEffort(ctx, s.publisher, events.New(events.UserSignedUp, map[string]any{
		"userId":   user.ID,
		"language": user.Language,
	}))

	return &AuthResult{Token: token, User: user.View()}, nil
}

// discardPhoto removes an uploaded photo after a failed signup. Failures are only logged.
func (s *AuthService) discardPhoto(ref *string) {
	if ref == nil || s.photos == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.photos.Delete(ctx, *ref); err != nil {
		log.Error().Err(err).Str("photo", *ref).Msg("failed to delete uploaded photo after signup failure")
	}
}

// Login authenticates identifier (email or mobile) and password.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Spend the same hashing time as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(password))
			return nil, apperrors.Auth(msgInvalidCredentials)
		}
		return nil, classify("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Auth(msgInvalidCredentials)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, classify("login", err)
	}
	return &AuthResult{Token: token, User: user.View()}, nil
}

func (s *AuthService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("resume-builder-dummy"), s.bcryptCost)
	})
	return s.dummyHash
}

// Authenticate verifies a session token and resolves it to the current user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.UserView, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Auth(msgInvalidToken)
		}
		return nil, classify("authenticate", err)
	}
	return user.View(), nil
}

// ValidateToken checks signature, algorithm and expiry of a token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, apperrors.Auth("no token, authorization denied")
	}
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &apperrors.Error{Kind: apperrors.KindAuth, Message: msgInvalidToken, Err: err}
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, apperrors.Auth("token has expired")
	}
	if claims.UserID == 0 {
		return nil, apperrors.Auth(msgInvalidToken)
	}
	return claims, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// RequestOTP issues a fresh 6-digit code for mobile, overwriting any pending one.
// SMS delivery is left to consumers of the otp.issued event; the code is also returned.
func (s *AuthService) RequestOTP(ctx context.Context, mobile string) (string, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return "", apperrors.Validation("mobile number is required")
	}

	user, err := s.userRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return "", classify("request otp", err)
	}

	if err := s.limiter.Allow(ctx, mobile); err != nil {
		return "", classify("request otp", err)
	}

	code, err := GenerateNumericOTP(otpDigits)
	if err != nil {
		return "", classify("generate otp", err)
	}
	expires := s.now().Add(s.otpTTL)
	if err := s.userRepo.SetOTP(ctx, user.ID, code, expires); err != nil {
		return "", classify("store otp", err)
	}

	log.Info().Uint("user_id", user.ID).Time("expires", expires).Msg("OTP issued")
	events.PublishBestEffort(ctx, s.publisher, events.New(events.OTPIssued, map[string]any{
		"userId":    user.ID,
		"mobile":    mobile,
		"code":      code,
		"expiresAt": expires.UTC(),
	}))
	return code, nil
}

// VerifyOTP checks code against the pending challenge for mobile. On success the mobile is
// marked verified and the challenge cleared in a single update.
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, code string) error {
	mobile = strings.TrimSpace(mobile)
	code = strings.TrimSpace(code)
	if mobile == "" || code == "" {
		return apperrors.Validation("mobile number and OTP are required")
	}

	user, err := s.userRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return classify("verify otp", err)
	}

	if user.OTPCode == nil || user.OTPExpires == nil {
		return apperrors.Auth(msgInvalidOTP)
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTPCode), []byte(code)) != 1 {
		return apperrors.Auth(msgInvalidOTP)
	}
	if !s.now().Before(*user.OTPExpires) {
		return apperrors.Auth(msgInvalidOTP)
	}

	if err := s.userRepo.ConsumeOTP(ctx, user.ID, code); err != nil {
		return classify("verify otp", err)
	}

	events.PublishBestEffort(ctx, s.publisher, events.New(events.MobileVerified, map[string]any{
		"userId": user.ID,
	}))
	return nil
}
