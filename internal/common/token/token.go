package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SafronovIK/authgate/internal/common/clock"
	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
)

// Verify failures are the taxonomy's token errors, so callers that do
// surface them get the standard code and HTTP mapping for free.
var (
	ErrTokenExpired error = commonerrors.ErrExpiredToken
	ErrTokenInvalid error = commonerrors.ErrInvalidToken
)

// Claims carries the verified identity extracted from a bearer token.
// UserID is the stringified numeric id from the sub claim.
type Claims struct {
	UserID string
	Email  string
}

type Service interface {
	Issue(userID int64, email string) (string, error)
	Verify(tokenString string) (Claims, error)
}

type JWTService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  clock.Clock
}

func NewJWTService(secret, algorithm string, ttl time.Duration, clk clock.Clock) (*JWTService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &JWTService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		clock:  clk,
	}, nil
}

func (s *JWTService) Issue(userID int64, email string) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"exp":   now.Add(s.ttl).Unix(),
		"iat":   now.Unix(),
	}

	t := jwt.NewWithClaims(s.method, claims)
	tokenString, err := t.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses and validates the token. Expiry is reported as
// ErrTokenExpired; every other failure (signature, structure, wrong
// algorithm, missing exp, missing claims) as ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	if sub == "" || email == "" {
		return Claims{}, fmt.Errorf("%w: missing sub or email claims", ErrTokenInvalid)
	}

	return Claims{
		UserID: sub,
		Email:  email,
	}, nil
}
