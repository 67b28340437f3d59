package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/session"
)

var (
	errBadCredentials = apperr.Validation("invalid email or password")
	errEmailTaken     = apperr.Validation("email is already registered")
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	ttl    time.Duration
	cost   int
}

type ServiceOption func(*Service)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("AuthService")
		}
	}
}

// WithSessionTTL sets how long issued sessions stay valid.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func NewService(db *gorm.DB, opts ...ServiceOption) *Service {
	s := &Service{db: db, logger: zap.NewNop(), ttl: session.DefaultTTL, cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL is the lifetime of sessions issued by Login.
func (s *Service) TTL() time.Duration { return s.ttl }

// Login checks the credentials and issues a session. With isSignUp the account is created first.
func (s *Service) Login(ctx context.Context, email, password string, isSignUp bool, ip, ua string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	var (
		user *models.UserModel
		err  error
	)
	if isSignUp {
		user, err = s.Register(ctx, email, password)
	} else {
		user, err = s.verify(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}

	token, _, err := session.Issue(ctx, s.db, user.ID, ip, ua, s.ttl)
	if err != nil {
		return nil, apperr.Persistence("issue session", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	}).Error; err != nil {
		s.logger.Warn("record login failed", zap.String("user", user.ID), zap.Error(err))
	} else {
		user.LastLoginTime = &now
		user.LastLoginIP = ip
	}

	s.logger.Info("signed in", zap.String("user", user.ID), zap.Bool("sign_up", isSignUp))
	return &LoginResult{User: user, Token: token}, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*models.UserModel, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Persistence("check email", err)
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Persistence("hash password", err)
	}
	user := &models.UserModel{Email: email, Password: string(hash), Name: defaultName(email)}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperr.Persistence("create user", err)
	}
	return user, nil
}

func (s *Service) verify(ctx context.Context, email, password string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, apperr.Persistence("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return &user, nil
}

// Logout revokes the session. An already revoked session is not an error.
func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return nil
	}
	if err := session.Revoke(ctx, s.db, userID, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Persistence("revoke session", err)
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil when the account no longer exists.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Persistence("load user", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
