package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SafronovIK/authgate/internal/auth/domain"
	"github.com/SafronovIK/authgate/internal/common/clock"
	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
	"github.com/SafronovIK/authgate/internal/common/logger"
	"github.com/SafronovIK/authgate/internal/common/token"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, user domain.User) (domain.User, error)
	getByIDFn    func(ctx context.Context, id int64) (domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.createFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmailFn(ctx, email)
}

type mockHasher struct {
	hashFn    func(password string) (string, error)
	compareFn func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	return m.hashFn(password)
}

func (m *mockHasher) Compare(hash, password string) error {
	return m.compareFn(hash, password)
}

type mockTokenService struct {
	issueFn func(userID int64, email string) (string, error)
}

func (m *mockTokenService) Issue(userID int64, email string) (string, error) {
	return m.issueFn(userID, email)
}

func (m *mockTokenService) Verify(tokenString string) (token.Claims, error) {
	return token.Claims{}, token.ErrTokenInvalid
}

func notFoundRepo() *mockUserRepo {
	return &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			return domain.User{}, commonerrors.ErrUserNotFound
		},
		createFn: func(ctx context.Context, user domain.User) (domain.User, error) {
			user.ID = 1
			return user, nil
		},
	}
}

func plainHasher() *mockHasher {
	return &mockHasher{
		hashFn: func(password string) (string, error) {
			return "hashed:" + password, nil
		},
		compareFn: func(hash, password string) error {
			if hash == "hashed:"+password {
				return nil
			}
			return errors.New("mismatch")
		},
	}
}

func newTestService(repo *mockUserRepo, hasher *mockHasher, tokens *mockTokenService) *AuthService {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return NewAuthService(repo, hasher, tokens, clk, logger.GetInstance())
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ngP@ssw0rd!",
	}
}

func TestRegisterSuccess(t *testing.T) {
	repo := notFoundRepo()
	svc := newTestService(repo, plainHasher(), nil)

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID != 1 {
		t.Errorf("ID = %d, want 1", user.ID)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if user.HashedPassword != "hashed:Str0ngP@ssw0rd!" {
		t.Errorf("HashedPassword = %q, plaintext must not be stored", user.HashedPassword)
	}
	if !user.IsActive {
		t.Error("new user not active")
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !user.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", user.CreatedAt, want)
	}
}

func TestRegisterValidationShortCircuitsRepo(t *testing.T) {
	repoCalled := false
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			repoCalled = true
			return domain.User{}, commonerrors.ErrUserNotFound
		},
		createFn: func(ctx context.Context, user domain.User) (domain.User, error) {
			repoCalled = true
			return user, nil
		},
	}
	svc := newTestService(repo, plainHasher(), nil)

	input := validInput()
	input.Email = "not-an-email"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, commonerrors.ErrInvalidEmail) {
		t.Fatalf("Register() error = %v, want ErrInvalidEmail", err)
	}

	input = validInput()
	input.Password = "weak"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, commonerrors.ErrWeakPassword) {
		t.Fatalf("Register() error = %v, want ErrWeakPassword", err)
	}

	if repoCalled {
		t.Error("repository touched before validation passed")
	}
}

func TestRegisterDuplicatePreCheck(t *testing.T) {
	repo := notFoundRepo()
	repo.getByEmailFn = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{ID: 7, Email: email}, nil
	}
	svc := newTestService(repo, plainHasher(), nil)

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, commonerrors.ErrUserAlreadyExists) {
		t.Fatalf("Register() error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	// Pre-check misses but the insert hits the unique constraint.
	repo := notFoundRepo()
	repo.createFn = func(ctx context.Context, user domain.User) (domain.User, error) {
		return domain.User{}, commonerrors.ErrUserAlreadyExists.WithCause(errors.New("23505"))
	}
	svc := newTestService(repo, plainHasher(), nil)

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, commonerrors.ErrUserAlreadyExists) {
		t.Fatalf("Register() error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestRegisterHashFailure(t *testing.T) {
	hashErr := errors.New("hash blew up")
	hasher := plainHasher()
	hasher.hashFn = func(password string) (string, error) {
		return "", hashErr
	}
	svc := newTestService(notFoundRepo(), hasher, nil)

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, hashErr) {
		t.Fatalf("Register() error = %v, want hash error", err)
	}
}

func storedUserRepo(user domain.User) *mockUserRepo {
	repo := notFoundRepo()
	repo.getByEmailFn = func(ctx context.Context, email string) (domain.User, error) {
		if email == user.Email {
			return user, nil
		}
		return domain.User{}, commonerrors.ErrUserNotFound
	}
	return repo
}

func TestIssueTokenSuccess(t *testing.T) {
	user := domain.User{
		ID:             42,
		Email:          "alice@example.com",
		HashedPassword: "hashed:Str0ngP@ssw0rd!",
		IsActive:       true,
	}
	tokens := &mockTokenService{
		issueFn: func(userID int64, email string) (string, error) {
			if userID != 42 || email != "alice@example.com" {
				t.Errorf("Issue(%d, %q), want (42, alice@example.com)", userID, email)
			}
			return "signed-token", nil
		},
	}
	svc := newTestService(storedUserRepo(user), plainHasher(), tokens)

	got, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Email:    "alice@example.com",
		Password: "Str0ngP@ssw0rd!",
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if got != "signed-token" {
		t.Errorf("token = %q", got)
	}
}

func TestIssueTokenRejections(t *testing.T) {
	user := domain.User{
		ID:             42,
		Email:          "alice@example.com",
		HashedPassword: "hashed:Str0ngP@ssw0rd!",
		IsActive:       true,
	}

	tests := []struct {
		name  string
		input IssueTokenInput
		setup func(u domain.User) domain.User
	}{
		{
			name:  "unknown email",
			input: IssueTokenInput{Email: "bob@example.com", Password: "Str0ngP@ssw0rd!"},
		},
		{
			name:  "wrong password",
			input: IssueTokenInput{Email: "alice@example.com", Password: "Wr0ngP@ssw0rd!"},
		},
		{
			name:  "inactive user",
			input: IssueTokenInput{Email: "alice@example.com", Password: "Str0ngP@ssw0rd!"},
			setup: func(u domain.User) domain.User {
				u.IsActive = false
				return u
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := user
			if tt.setup != nil {
				stored = tt.setup(stored)
			}
			svc := newTestService(storedUserRepo(stored), plainHasher(), &mockTokenService{
				issueFn: func(userID int64, email string) (string, error) {
					t.Error("token issued for rejected credentials")
					return "", nil
				},
			})

			_, err := svc.IssueToken(context.Background(), tt.input)
			if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
				t.Fatalf("IssueToken() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
