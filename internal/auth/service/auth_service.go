package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/SafronovIK/authgate/internal/auth/domain"
	"github.com/SafronovIK/authgate/internal/auth/repository"
	"github.com/SafronovIK/authgate/internal/common/clock"
	commoncrypto "github.com/SafronovIK/authgate/internal/common/crypto"
	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
	"github.com/SafronovIK/authgate/internal/common/logger"
	"github.com/SafronovIK/authgate/internal/common/token"
	"github.com/SafronovIK/authgate/internal/observability/metrics"
)

type AuthService struct {
	repo   repository.UserRepository
	hasher commoncrypto.PasswordHasher
	tokens token.Service
	clock  clock.Clock
	log    *logger.Logger
}

func NewAuthService(
	repo repository.UserRepository,
	hasher commoncrypto.PasswordHasher,
	tokens token.Service,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		clock:  clk,
		log:    log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type IssueTokenInput struct {
	Email    string
	Password string
}

// Register validates the credentials, rejects duplicate emails and stores
// the new user. Validation runs before any repository access; the
// pre-check is advisory and the storage unique constraint is the final
// word on duplicates, so a concurrent insert surfaces as the same error.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "register_attempt",
	}).Info("register attempt")

	email, err := domain.NewEmail(input.Email)
	if err != nil {
		metrics.RegistrationsFailed.WithLabelValues("invalid_email").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return domain.User{}, err
	}

	password, err := domain.NewPassword(input.Password)
	if err != nil {
		metrics.RegistrationsFailed.WithLabelValues("weak_password").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return domain.User{}, err
	}

	_, err = s.repo.GetByEmail(ctx, email.String())
	switch {
	case err == nil:
		metrics.RegistrationsFailed.WithLabelValues("duplicate_email").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_duplicate_email",
		}).Warn("register rejected: email already taken")
		return domain.User{}, commonerrors.ErrUserAlreadyExists
	case !errors.Is(err, commonerrors.ErrUserNotFound):
		return domain.User{}, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password.String())
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return domain.User{}, err
	}

	user := domain.NewUser(input.Username, email, hash, s.clock.Now().UTC())

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserAlreadyExists) {
			metrics.RegistrationsFailed.WithLabelValues("duplicate_email").Inc()
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "register_duplicate_email",
			}).Warn("register rejected: concurrent insert hit unique constraint")
			return domain.User{}, commonerrors.ErrUserAlreadyExists
		}
		return domain.User{}, err
	}

	metrics.UsersRegistered.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": created.ID,
		"email":   input.Email,
		"action":  "register_success",
	}).Info("user registered")

	return created, nil
}

// IssueToken verifies the credentials and returns a signed bearer token.
// Unknown email, wrong password and inactive account all collapse into
// ErrInvalidCredentials so callers cannot probe for registered emails.
func (s *AuthService) IssueToken(ctx context.Context, input IssueTokenInput) (string, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "token_attempt",
	}).Info("token issuance attempt")

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "token_unknown_email",
			}).Warn("token issuance rejected: unknown email")
			return "", commonerrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "token_bad_password",
		}).Warn("token issuance rejected: password mismatch")
		return "", commonerrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "token_inactive_user",
		}).Warn("token issuance rejected: inactive user")
		return "", commonerrors.ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "token_sign_failed",
		}).Errorf("token issuance failed: %v", err)
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"action":  "token_issued",
	}).Info("access token issued")

	return tokenString, nil
}
