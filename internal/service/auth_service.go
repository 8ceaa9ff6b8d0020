package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-library-backend/internal/model"
	"go-library-backend/pkg/apierror"
	"go-library-backend/pkg/validator"
)

const passwordHashCost = 10

type studentFinder interface {
	FindActiveByEmail(ctx context.Context, email string) (model.Student, error)
	FindActiveByID(ctx context.Context, id int64) (model.Student, error)
}

type staffFinder interface {
	FindActiveByEmail(ctx context.Context, email string) (model.Staff, error)
	FindActiveByID(ctx context.Context, id int64) (model.Staff, error)
}

type AuthService struct {
	students  studentFinder
	staff     staffFinder
	validate  *validator.Validator
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(jwtSecret string, accessTTL time.Duration, students studentFinder, staff staffFinder) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	return &AuthService{
		students:  students,
		staff:     staff,
		validate:  validator.New(),
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.LoginResponse{}, err
	}

	user, found, err := s.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return model.LoginResponse{}, err
	}
	if !found {
		return model.LoginResponse{}, apierror.Unauthorized("invalid credentials")
	}

	return s.IssueSession(user)
}

// ValidateCredentials checks email/password against active students first and active
// staff second. A student row for the email shadows any staff row with the same email,
// even when the password does not match the student. found is false when nothing
// matches; err is reserved for store failures.
func (s *AuthService) ValidateCredentials(ctx context.Context, email string, password string) (model.AuthUser, bool, error) {
	student, err := s.students.FindActiveByEmail(ctx, email)
	switch {
	case err == nil:
		if !passwordMatches(student.PasswordHash, password) {
			return model.AuthUser{}, false, nil
		}
		return student.AuthUser(), true, nil
	case !errors.Is(err, model.ErrUserNotFound):
		return model.AuthUser{}, false, fmt.Errorf("look up student: %w", err)
	}

	member, err := s.staff.FindActiveByEmail(ctx, email)
	switch {
	case err == nil:
		if !passwordMatches(member.PasswordHash, password) {
			return model.AuthUser{}, false, nil
		}
		return member.AuthUser(), true, nil
	case !errors.Is(err, model.ErrUserNotFound):
		return model.AuthUser{}, false, fmt.Errorf("look up staff: %w", err)
	}

	return model.AuthUser{}, false, nil
}

func (s *AuthService) IssueSession(user model.AuthUser) (model.LoginResponse, error) {
	now := time.Now().UTC()

	token, err := s.signToken(jwt.MapClaims{
		"sub":   model.AuthClaims{UserID: user.ID}.Subject(),
		"email": user.Email,
		"type":  string(user.Type),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	return model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        user,
	}, nil
}

// ValidateToken checks signature, algorithm and expiry and extracts the claims. It does
// not consult the store; see ResolveToken.
func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.Unauthorized("invalid token signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, apierror.Unauthorized("invalid or expired token")
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Unauthorized("invalid token claims")
	}

	subject, _ := claimsMap["sub"].(string)
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	claims := &model.AuthClaims{UserID: userID}
	claims.Email, _ = claimsMap["email"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)
	userType, _ := claimsMap["type"].(string)
	claims.Type = model.UserType(userType)

	return claims, nil
}

// ResolveToken maps verified claims back to a live identity. It runs on every
// authenticated request so that deactivation takes effect before the token expires.
func (s *AuthService) ResolveToken(ctx context.Context, claims *model.AuthClaims) (model.AuthUser, error) {
	if claims == nil {
		return model.AuthUser{}, apierror.Unauthorized("authentication required")
	}

	switch claims.Type {
	case model.UserTypeStudent:
		student, err := s.students.FindActiveByID(ctx, claims.UserID)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.AuthUser{}, apierror.Unauthorized("Student not found")
		}
		if err != nil {
			return model.AuthUser{}, fmt.Errorf("resolve student: %w", err)
		}
		return student.AuthUser(), nil
	case model.UserTypeStaff:
		member, err := s.staff.FindActiveByID(ctx, claims.UserID)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.AuthUser{}, apierror.Unauthorized("Staff not found")
		}
		if err != nil {
			return model.AuthUser{}, fmt.Errorf("resolve staff: %w", err)
		}
		return member.AuthUser(), nil
	default:
		return model.AuthUser{}, apierror.Unauthorized("Invalid user type")
	}
}

func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (model.AuthUser, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return model.AuthUser{}, err
	}

	return s.ResolveToken(ctx, claims)
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
