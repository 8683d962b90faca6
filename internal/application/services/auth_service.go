package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/auth"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = apperrors.NewUnauthorizedError("invalid email or password")

const loginNoticeSubject = "セキュリティ通知"

// SignupInput is the registration form
type SignupInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ProfileInput is the editable profile form
type ProfileInput struct {
	Username      string `json:"username" validate:"required,max=150"`
	FirstName     string `json:"first_name" validate:"max=150"`
	LastName      string `json:"last_name" validate:"max=150"`
	FirstNameKana string `json:"first_name_kana" validate:"max=150"`
	LastNameKana  string `json:"last_name_kana" validate:"max=150"`
	PhoneNumber   string `json:"phone_number" validate:"omitempty,phone"`
	Age           *int   `json:"age" validate:"omitempty,min=0,max=110"`
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// Mypage is the member dashboard
type Mypage struct {
	User         *entities.User          `json:"user"`
	Premium      bool                    `json:"premium"`
	Favorites    []*entities.Restaurant  `json:"favorites"`
	Reservations []*entities.Reservation `json:"reservations"`
}

// AuthService handles signup, login and profiles
type AuthService struct {
	users         repositories.UserRepository
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenManager
	email         providers.EmailSender
	emailFrom     string
	location      *time.Location
	favorites     *FavoriteService
	reservations  *ReservationService
	subscriptions *SubscriptionService
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repositories.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	email providers.EmailSender,
	emailFrom string,
	location *time.Location,
	favorites *FavoriteService,
	reservations *ReservationService,
	subscriptions *SubscriptionService,
) *AuthService {
	if location == nil {
		location = time.UTC
	}
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		email:         email,
		emailFrom:     emailFrom,
		location:      location,
		favorites:     favorites,
		reservations:  reservations,
		subscriptions: subscriptions,
		now:           time.Now,
	}
}

// Signup registers an active, unverified user
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*entities.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	user := &entities.User{
		ID:            uuid.NewString(),
		Email:         input.Email,
		Username:      input.Username,
		PasswordHash:  hash,
		IsActive:      true,
		EmailVerified: false,
		DateJoined:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// Login verifies credentials, issues a token and mails a security notice.
// A failed notice is logged and does not fail the login.
func (s *AuthService) Login(ctx context.Context, email, password string, client entities.LoginContext) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !s.hasher.Check(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	if client.At.IsZero() {
		client.At = s.now()
	}
	s.sendLoginNotice(ctx, user, client)

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("user logged in")
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}
	return user, nil
}

// Profile returns the user record
func (s *AuthService) Profile(ctx context.Context, userID string) (*entities.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile validates and stores the editable profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*entities.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	update := entities.ProfileUpdate{
		Username:      input.Username,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		FirstNameKana: input.FirstNameKana,
		LastNameKana:  input.LastNameKana,
		PhoneNumber:   input.PhoneNumber,
		Age:           input.Age,
	}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Mypage gathers the profile, membership state, favorites and reservations
func (s *AuthService) Mypage(ctx context.Context, user *entities.User) (*Mypage, error) {
	favorites, err := s.favorites.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Mypage{
		User:         user,
		Premium:      s.subscriptions.IsActive(ctx, user),
		Favorites:    favorites,
		Reservations: reservations,
	}, nil
}

func (s *AuthService) sendLoginNotice(ctx context.Context, user *entities.User, client entities.LoginContext) {
	if s.email == nil {
		return
	}

	var body strings.Builder
	body.WriteString("ご利用ありがとうございます。下記の端末からログインがありました。\n\n")
	fmt.Fprintf(&body, "日時: %s\n", client.At.In(s.location).Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&body, "IPアドレス: %s\n", client.IPAddress)
	fmt.Fprintf(&body, "ユーザーエージェント: %s\n\n", client.UserAgent)
	body.WriteString("お心当たりのない場合はパスワードを変更してください。\n")

	err := s.email.Send(ctx, &entities.EmailMessage{
		From:     s.emailFrom,
		To:       []string{user.Email},
		Subject:  loginNoticeSubject,
		TextBody: body.String(),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("failed to send login notice")
	}
}
