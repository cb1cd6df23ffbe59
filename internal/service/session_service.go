package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/internal/repository"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

// Authenticator confirms a credential against the portal.
type Authenticator interface {
	Login(ctx context.Context, studentID, password string) (*models.PortalProfile, error)
}

type userStore interface {
	Put(key string, value any)
	User(studentID string) (*models.User, bool)
}

// SessionConfig defines gateway token settings.
type SessionConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	// HashCost is the bcrypt cost for stored credentials; zero means bcrypt.DefaultCost.
	HashCost int
}

// SessionService owns the confirmed identity of the session.
type SessionService struct {
	auth      Authenticator
	users     userStore
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
	now       func() time.Time

	mu      sync.RWMutex
	current *models.User
}

// NewSessionService constructs a SessionService.
func NewSessionService(auth Authenticator, users userStore, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 12 * time.Hour
	}
	if config.HashCost == 0 {
		config.HashCost = bcrypt.DefaultCost
	}
	return &SessionService{auth: auth, users: users, validator: validate, logger: logger, config: config, now: time.Now}
}

// Register confirms the credential with the portal, caches the user and makes it the session identity.
// When the portal is unreachable, a student registered earlier in this session is confirmed again
// against the cached credential.
func (s *SessionService) Register(ctx context.Context, req models.RegisterRequest) (*models.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	user, err := s.confirm(ctx, req)
	if err != nil {
		return nil, err
	}

	token, issuedAt, err := s.generateToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.users.Put(repository.UserKey(user.StudentID), user)
	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	s.logger.Info("student registered", zap.String("student_id", user.StudentID), zap.Int("grade", user.Grade))

	return &models.SessionResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        *user,
	}, nil
}

// confirm builds the confirmed user without publishing it.
func (s *SessionService) confirm(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	profile, err := s.auth.Login(ctx, req.StudentID, req.Password)
	if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) {
			appErr = appErrors.WrapKind(err, appErrors.ErrNetworkFailure, "portal login failed")
		}
		if errors.Is(appErr, appErrors.ErrNetworkFailure) && ctx.Err() == nil && s.VerifyCredential(req.StudentID, req.Password) {
			cached, _ := s.users.User(req.StudentID)
			s.logger.Warn("portal login unreachable, confirmed from cached credential",
				zap.String("student_id", req.StudentID), zap.Error(err))
			user := *cached
			return &user, nil
		}
		return nil, appErr
	}

	grade, ok := resolveGrade(req, profile)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade could not be determined for "+req.StudentID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.HashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash credential")
	}

	user := &models.User{
		StudentID:      req.StudentID,
		Grade:          grade,
		CredentialHash: string(hash),
		Confirmed:      true,
		RegisteredAt:   s.now().UTC(),
	}
	if profile != nil {
		user.Name = profile.Name
	}
	return user, nil
}

func resolveGrade(req models.RegisterRequest, profile *models.PortalProfile) (int, bool) {
	if req.Grade > 0 {
		return req.Grade, true
	}
	if profile != nil && profile.Grade > 0 {
		return profile.Grade, true
	}
	return models.GradeFromStudentID(req.StudentID)
}

// Current returns the confirmed user, or nil before registration.
func (s *SessionService) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Logout clears the session identity. The user stays in the record cache.
func (s *SessionService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// User returns a user registered earlier in this session.
func (s *SessionService) User(studentID string) (*models.User, error) {
	user, ok := s.users.User(studentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not registered in this session")
	}
	return user, nil
}

// VerifyCredential reports whether password matches the credential cached for studentID.
func (s *SessionService) VerifyCredential(studentID, password string) bool {
	user, ok := s.users.User(studentID)
	if !ok || user.CredentialHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.CredentialHash), []byte(password)) == nil
}

// ValidateToken parses a gateway token. Tokens of a student who is no longer the session
// identity are rejected.
func (s *SessionService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}

	current := s.Current()
	if current == nil || current.StudentID != claims.StudentID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session ended")
	}
	return claims, nil
}

func (s *SessionService) generateToken(user *models.User) (string, time.Time, error) {
	now := s.now().UTC()
	claims := models.SessionClaims{
		StudentID: user.StudentID,
		Grade:     user.Grade,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.StudentID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}
