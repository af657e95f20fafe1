package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ErrInvalidCredentials indicates the username/password pair is not on the allow-list.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoActiveSession indicates no current user is stored.
var ErrNoActiveSession = errors.New("no active session")

// credential is one entry of the static allow-list. This is deliberately not
// a security-relevant store; the deployment enrolls a fixed cohort.
type credential struct {
	Username string
	Password string
	Role     models.Role
	Name     string
}

var credentials = []credential{
	// students
	{Username: "222BCAA29", Password: "STUD1", Role: models.RoleStudent, Name: "Student 222BCAA29"},
	{Username: "232BCAA65", Password: "STUD2", Role: models.RoleStudent, Name: "Student 232BCAA65"},
	{Username: "232BCAA16", Password: "STUD3", Role: models.RoleStudent, Name: "Student 232BCAA16"},
	{Username: "232BCAA22", Password: "STUD4", Role: models.RoleStudent, Name: "Student 232BCAA22"},
	// teachers
	{Username: "POWBI26", Password: "TEACH1", Role: models.RoleTeacher, Name: "Prof. PowerBI"},
	{Username: "MA26", Password: "TEACH2", Role: models.RoleTeacher, Name: "Prof. Mathematics"},
	{Username: "SE26", Password: "TEACH3", Role: models.RoleTeacher, Name: "Prof. Software Eng"},
	{Username: "IOT26", Password: "TEACH4", Role: models.RoleTeacher, Name: "Prof. IoT"},
	{Username: "AI26", Password: "TEACH5", Role: models.RoleTeacher, Name: "Prof. AI"},
}

// AuthService authenticates users against the static allow-list and manages
// the stored current-user session record.
type AuthService interface {
	Authenticate(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	CurrentUser(ctx context.Context) (models.User, error)
	Logout(ctx context.Context) error
}

type authService struct {
	sessions  repository.SessionRepository
	validator *validator.Validate
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(sessions repository.SessionRepository, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &authService{
		sessions:  sessions,
		validator: validate,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Authenticate(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	var matched *credential
	for i := range credentials {
		if credentials[i].Username == payload.Username && credentials[i].Password == payload.Password {
			matched = &credentials[i]
			break
		}
	}
	if matched == nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	user := models.User{
		ID:    matched.Username,
		Name:  matched.Name,
		Role:  matched.Role,
		Email: fmt.Sprintf("%s@university.edu", strings.ToLower(matched.Username)),
	}

	if err := s.sessions.SetCurrentUser(ctx, user); err != nil {
		return dto.LoginResponse{}, err
	}

	token, err := s.signToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user authenticated")
	return dto.LoginResponse{User: dto.NewUserResponse(user), Token: token}, nil
}

func (s *authService) signToken(user models.User) (string, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) CurrentUser(ctx context.Context) (models.User, error) {
	user, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrNoActiveSession
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}
