package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/emails"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	revokedPrefix   = "auth:revoked:"
	resetPrefix     = "auth:reset:"
	defaultResetTTL = 30 * time.Minute
)

// Service authenticates users and manages credentials.
type Service struct {
	DB          *gorm.DB
	Rdb         *redis.Client // optional; revocation and password reset need it
	Issuer      *Issuer
	EmailSender emails.Sender // optional
	FrontendURL string
	ResetTTL    time.Duration
}

// LoginInput for the login request body.
type LoginInput struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// LoginResult is returned by Login and Signup.
type LoginResult struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	userName := strings.ToLower(strings.TrimSpace(in.UserName))
	if userName == "" || in.Password == "" {
		return nil, ErrCredentialsRequired
	}
	var u domain.User
	err := s.DB.WithContext(ctx).Where("LOWER(user_name) = ?", userName).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Store(err, "User")
	}
	if !u.IsActive || !CheckPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueFor(ctx, u)
}

func (s *Service) issueFor(ctx context.Context, u domain.User) (*LoginResult, error) {
	var role domain.Role
	if err := s.DB.WithContext(ctx).First(&role, "role_id = ?", u.RoleID).Error; err != nil {
		return nil, apperrors.Store(err, "Role")
	}
	token, sess, err := s.Issuer.Issue(u, role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{Token: token, Session: sess}, nil
}

// SignupInput creates a client and its login in one step.
type SignupInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Mobile        string `json:"mobile"`
	Password      string `json:"password"`
	PANNo         string `json:"panNo"`
	ReferenceCode string `json:"referenceCode"`
}

// Signup registers a new client with a Client-role user and logs them in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*LoginResult, error) {
	var details []apperrors.FieldError
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := validation.NormalizeMobile(in.Mobile)
	pan := validation.NormalizePAN(in.PANNo)
	if !validation.IsValidFullname(name) {
		details = append(details, apperrors.FieldError{Field: "name", Message: "Name is required and may only contain letters"})
	}
	if !validation.IsValidEmail(email) {
		details = append(details, apperrors.FieldError{Field: "email", Message: "Invalid email format"})
	}
	if !validation.IsValidMobile(mobile) {
		details = append(details, apperrors.FieldError{Field: "mobile", Message: "Invalid mobile number"})
	}
	if !validation.IsValidPassword(in.Password) {
		details = append(details, apperrors.FieldError{Field: "password", Message: ErrInvalidPassword.Message})
	}
	if pan != "" && !validation.IsValidPAN(pan) {
		details = append(details, apperrors.FieldError{Field: "panNo", Message: "Invalid PAN"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid signup details", details...)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var user domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&domain.User{}).Where("LOWER(user_name) = ?", email).Count(&count).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		if count > 0 {
			return ErrAccountExists
		}
		var role domain.Role
		if err := tx.Where("name = ?", constants.Client).First(&role).Error; err != nil {
			return apperrors.Store(err, "Client role")
		}

		client := domain.Client{
			Code:     signupCode(),
			Name:     name,
			Mobile:   &mobile,
			Email:    &email,
			IsActive: true,
		}
		if pan != "" {
			client.PANNo = &pan
		}
		if code := strings.TrimSpace(in.ReferenceCode); code != "" {
			var ref domain.Client
			if err := tx.Where("code = ?", code).First(&ref).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Validation("Invalid signup details",
						apperrors.FieldError{Field: "referenceCode", Message: "Referral code not found"})
				}
				return apperrors.Store(err, "Client")
			}
			client.ReferenceID = &ref.ClientID
		}
		if err := tx.Create(&client).Error; err != nil {
			return apperrors.Store(err, "Client")
		}

		user = domain.User{
			UserName:     email,
			PasswordHash: hash,
			RoleID:       role.RoleID,
			ClientID:     &client.ClientID,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.UserID.String()).Msg("auth: signup completed")
	return s.issueFor(ctx, user)
}

func signupCode() string {
	return "WD" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Authenticate verifies a bearer token and checks it has not been revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	sess, err := s.Issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.Rdb != nil && sess.TokenID != "" {
		n, err := s.Rdb.Exists(ctx, revokedPrefix+sess.TokenID).Result()
		if err != nil {
			// Revocation is best-effort when Redis is down; signature and expiry still apply.
			log.Warn().Err(err).Msg("auth: revocation check failed")
		} else if n > 0 {
			return nil, ErrRevokedToken
		}
	}
	return sess, nil
}

// SessionView is the body of GET /api/auth/session.
type SessionView struct {
	*Session
	ClientName *string `json:"clientName"`
	ClientCode *string `json:"clientCode"`
}

// CurrentSession reloads the user behind a session so deactivated users are rejected.
func (s *Service) CurrentSession(ctx context.Context, sess *Session) (*SessionView, error) {
	if sess == nil {
		return nil, ErrMissingToken
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperrors.Store(err, "User")
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	view := &SessionView{Session: sess}
	if sess.ClientID != nil {
		var c domain.Client
		err := s.DB.WithContext(ctx).First(&c, "client_id = ?", *sess.ClientID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Store(err, "Client")
		}
		if err == nil {
			view.ClientName = &c.Name
			view.ClientCode = &c.Code
		}
	}
	return view, nil
}

// Logout revokes the session's token until it would have expired.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if sess == nil || sess.TokenID == "" || s.Rdb == nil {
		return nil
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.Rdb.Set(ctx, revokedPrefix+sess.TokenID, sess.UserID.String(), ttl).Err(); err != nil {
		return apperrors.Unavailable(err)
	}
	return nil
}

// ForgotPassword emails a one-time reset link. Unknown users get the same
// silent success so the endpoint cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, userName string) error {
	userName = strings.ToLower(strings.TrimSpace(userName))
	if userName == "" {
		return apperrors.Validation("Username is required")
	}
	if s.Rdb == nil {
		return apperrors.Unavailable(errors.New("redis is not configured"))
	}
	var u domain.User
	err := s.DB.WithContext(ctx).Where("LOWER(user_name) = ?", userName).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Store(err, "User")
	}
	if !u.IsActive {
		return nil
	}

	to, name := s.recipientFor(ctx, u)
	if to == "" {
		log.Warn().Str("user_id", u.UserID.String()).Msg("auth: no email address for password reset")
		return nil
	}

	token := uuid.NewString()
	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	if err := s.Rdb.Set(ctx, resetPrefix+token, u.UserID.String(), ttl).Err(); err != nil {
		return apperrors.Unavailable(err)
	}
	if s.EmailSender == nil {
		log.Warn().Str("user_id", u.UserID.String()).Msg("auth: email sender not configured, reset link not sent")
		return nil
	}
	link := strings.TrimRight(s.FrontendURL, "/") + "/reset-password?token=" + token
	if err := s.EmailSender.SendPasswordReset(ctx, to, name, link); err != nil {
		log.Error().Err(err).Str("user_id", u.UserID.String()).Msg("auth: reset email failed")
	}
	return nil
}

func (s *Service) recipientFor(ctx context.Context, u domain.User) (string, string) {
	if u.ClientID != nil {
		var c domain.Client
		if err := s.DB.WithContext(ctx).First(&c, "client_id = ?", *u.ClientID).Error; err == nil && c.Email != nil && *c.Email != "" {
			return *c.Email, c.Name
		}
	}
	if validation.IsValidEmail(u.UserName) {
		return u.UserName, ""
	}
	return "", ""
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if !validation.IsValidPassword(password) {
		return ErrInvalidPassword
	}
	if s.Rdb == nil {
		return apperrors.Unavailable(errors.New("redis is not configured"))
	}
	userID, err := s.Rdb.GetDel(ctx, resetPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return apperrors.Unavailable(err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return apperrors.Internal(err)
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"password_hash": hash, "last_modified_date": time.Now()})
	if res.Error != nil {
		return apperrors.Store(res.Error, "User")
	}
	if res.RowsAffected == 0 {
		return ErrInvalidResetToken
	}
	return nil
}
