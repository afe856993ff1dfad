// Package services contains the server-side business logic. UserService runs
// the account and session flows: registration, login, token refresh, logout,
// password change and current-user lookup.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/uploads"
)

const (
	msgAllFieldsRequired  = "all fields are required"
	msgInvalidEmail       = "invalid email"
	msgUserExists         = "user with email or username already exists"
	msgAvatarRequired     = "avatar is required"
	msgUploadFailed       = "error while uploading file"
	msgUserNotFound       = "user not found"
	msgCredentialsMissing = "username or email and password are required"
	msgInvalidCredentials = "invalid credentials"
	msgTokenGeneration    = "something went wrong while generating access and refresh tokens"
	msgRefreshRequired    = "refresh token required"
	msgInvalidRefresh     = "invalid refresh token"
	msgRefreshUsed        = "refresh token is expired or used"
	msgInvalidOldPassword = "invalid old password"
	msgPasswordsRequired  = "old and new password are required"
	msgPasswordTooLong    = "password must be at most 72 bytes"
	msgSomethingWrong     = "something went wrong"
)

// Operation names used for logs and metrics.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpRefresh        = "refresh"
	OpLogout         = "logout"
	OpChangePassword = "change_password"
	OpCurrentUser    = "current_user"
)

// TokenIssuer signs and verifies the token pair.
type TokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	ParseRefreshToken(token string) (string, error)
}

// Policy holds the behavior switches of the flows.
type Policy struct {
	// RevokeSessionsOnPasswordChange clears the refresh slot together with
	// the password update.
	RevokeSessionsOnPasswordChange bool
}

type RegisterInput struct {
	FullName   string
	Email      string
	UserName   string
	Password   string
	Avatar     *uploads.Object
	CoverImage *uploads.Object
}

type LoginInput struct {
	Email    string
	UserName string
	Password string
}

// LoginResult is what a successful login hands back.
type LoginResult struct {
	User   *models.PublicUser
	Tokens models.TokenPair
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	issuer      TokenIssuer
	hasher      credentials.Hasher
	uploader    uploads.ObjectUploader
	policy      Policy
	logger      logging.Logger
	metrics     metrics.Recorder
	validate    *validator.Validate
}

// NewUserService wires the flows. logger and rec may be nil.
func NewUserService(m repomanager.RepositoryManager, issuer TokenIssuer, hasher credentials.Hasher,
	uploader uploads.ObjectUploader, policy Policy, logger logging.Logger, rec metrics.Recorder) *UserService {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &UserService{
		repomanager: m,
		issuer:      issuer,
		hasher:      hasher,
		uploader:    uploader,
		policy:      policy,
		logger:      logger,
		metrics:     rec,
		validate:    validator.New(),
	}
}

func (s *UserService) observe(op string, err error, start time.Time) {
	if s.metrics != nil {
		s.metrics.Observe(op, err, time.Since(start))
	}
}

// internal logs the cause and returns an InternalError carrying msg.
func (s *UserService) internal(ctx context.Context, op, msg string, cause error) error {
	s.logger.Error(ctx, msg, "op", op, "error", cause)
	return common.Internal(msg, cause)
}

// Register creates an account. The avatar is mandatory, the cover image is
// optional, and the username is stored lowercased.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (u *models.PublicUser, err error) {
	defer func(start time.Time) { s.observe(OpRegister, err, start) }(time.Now())

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.UserName = strings.ToLower(strings.TrimSpace(in.UserName))

	if in.FullName == "" || in.Email == "" || in.UserName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.BadRequest(msgAllFieldsRequired)
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return nil, common.BadRequest(msgInvalidEmail)
	}
	if err := credentials.CheckLength(in.Password); err != nil {
		return nil, common.BadRequest(msgPasswordTooLong)
	}

	userRepo := s.repomanager.Users()

	_, err = userRepo.FindByUserNameOrEmail(ctx, in.UserName, in.Email)
	switch {
	case err == nil:
		return nil, common.Conflict(msgUserExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.internal(ctx, OpRegister, msgSomethingWrong, err)
	}

	if in.Avatar == nil || in.Avatar.Body == nil {
		return nil, common.BadRequest(msgAvatarRequired)
	}

	avatarURL, err := s.uploader.Upload(ctx, *in.Avatar)
	if err != nil {
		return nil, s.internal(ctx, OpRegister, msgUploadFailed, err)
	}

	var coverURL string
	if in.CoverImage != nil && in.CoverImage.Body != nil {
		coverURL, err = s.uploader.Upload(ctx, *in.CoverImage)
		if err != nil {
			return nil, s.internal(ctx, OpRegister, msgUploadFailed, err)
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, credentials.ErrPasswordTooLong) {
			return nil, common.BadRequest(msgPasswordTooLong)
		}
		return nil, s.internal(ctx, OpRegister, msgSomethingWrong, err)
	}

	user, err := userRepo.Create(ctx, &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		UserName:     in.UserName,
		PasswordHash: hash,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict(msgUserExists)
		}
		return nil, s.internal(ctx, OpRegister, "something went wrong while registering the user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.Public(), nil
}

// Login runs lookup, verify, sign and persist in that order. Nothing is
// returned unless the new refresh token has been stored.
func (s *UserService) Login(ctx context.Context, in LoginInput) (res *LoginResult, err error) {
	defer func(start time.Time) { s.observe(OpLogin, err, start) }(time.Now())

	userName := strings.ToLower(strings.TrimSpace(in.UserName))
	email := strings.TrimSpace(in.Email)

	if (userName == "" && email == "") || in.Password == "" {
		return nil, common.BadRequest(msgCredentialsMissing)
	}

	user, err := s.repomanager.Users().FindByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUserNotFound)
		}
		return nil, s.internal(ctx, OpLogin, msgSomethingWrong, err)
	}

	if !credentials.Verify(s.hasher, user, in.Password) {
		return nil, common.Unauthorized(msgInvalidCredentials)
	}

	pair, err := s.signPair(user.ID)
	if err != nil {
		return nil, s.internal(ctx, OpLogin, msgTokenGeneration, err)
	}

	if err := s.repomanager.RefreshTokens().Set(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, s.internal(ctx, OpLogin, msgTokenGeneration, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user.Public(), Tokens: *pair}, nil
}

// RefreshAccessToken rotates the session: the presented refresh token must
// be the one in the user's slot, and is replaced by a new one.
func (s *UserService) RefreshAccessToken(ctx context.Context, presented string) (pair *models.TokenPair, err error) {
	defer func(start time.Time) { s.observe(OpRefresh, err, start) }(time.Now())

	if presented == "" {
		return nil, common.Unauthorized(msgRefreshRequired)
	}

	userID, err := s.issuer.ParseRefreshToken(presented)
	if err != nil {
		return nil, common.UnauthorizedCause(msgInvalidRefresh, err)
	}

	user, err := s.repomanager.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgInvalidRefresh)
		}
		return nil, s.internal(ctx, OpRefresh, msgSomethingWrong, err)
	}

	sessions := s.repomanager.RefreshTokens()

	stored, err := sessions.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgInvalidRefresh)
		}
		return nil, s.internal(ctx, OpRefresh, msgSomethingWrong, err)
	}

	if !tokensEqual(stored, presented) {
		s.logger.Warn(ctx, "stale refresh token presented", "user_id", user.ID)
		return nil, common.Unauthorized(msgRefreshUsed)
	}

	pair, err = s.signPair(user.ID)
	if err != nil {
		return nil, s.internal(ctx, OpRefresh, msgTokenGeneration, err)
	}
	if pair.RefreshToken == presented {
		return nil, s.internal(ctx, OpRefresh, msgTokenGeneration, errors.New("issued refresh token equals the presented one"))
	}

	if err := sessions.Set(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, s.internal(ctx, OpRefresh, msgTokenGeneration, err)
	}

	return pair, nil
}

// Logout empties the user's refresh slot. Calling it again is a no-op.
func (s *UserService) Logout(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { s.observe(OpLogout, err, start) }(time.Now())

	if err := s.repomanager.RefreshTokens().Clear(ctx, userID); err != nil {
		return s.internal(ctx, OpLogout, msgSomethingWrong, err)
	}

	s.logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// ChangePassword replaces the password hash after checking the old
// password. With Policy.RevokeSessionsOnPasswordChange the refresh slot is
// cleared in the same unit of work.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (err error) {
	defer func(start time.Time) { s.observe(OpChangePassword, err, start) }(time.Now())

	if oldPassword == "" || newPassword == "" {
		return common.BadRequest(msgPasswordsRequired)
	}
	if err := credentials.CheckLength(newPassword); err != nil {
		return common.BadRequest(msgPasswordTooLong)
	}

	user, err := s.repomanager.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(msgUserNotFound)
		}
		return s.internal(ctx, OpChangePassword, msgSomethingWrong, err)
	}

	if !credentials.Verify(s.hasher, user, oldPassword) {
		return common.Unauthorized(msgInvalidOldPassword)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, credentials.ErrPasswordTooLong) {
			return common.BadRequest(msgPasswordTooLong)
		}
		return s.internal(ctx, OpChangePassword, msgSomethingWrong, err)
	}

	if s.policy.RevokeSessionsOnPasswordChange {
		err = s.repomanager.WithinTx(ctx, func(ctx context.Context, u users.Repository, rt refreshtokens.Repository) error {
			if err := u.UpdatePassword(ctx, user.ID, hash); err != nil {
				return err
			}
			return rt.Clear(ctx, user.ID)
		})
	} else {
		err = s.repomanager.Users().UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(msgUserNotFound)
		}
		return s.internal(ctx, OpChangePassword, msgSomethingWrong, err)
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID, "sessions_revoked", s.policy.RevokeSessionsOnPasswordChange)
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (u *models.PublicUser, err error) {
	defer func(start time.Time) { s.observe(OpCurrentUser, err, start) }(time.Now())

	user, err := s.repomanager.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUserNotFound)
		}
		return nil, s.internal(ctx, OpCurrentUser, msgSomethingWrong, err)
	}
	return user.Public(), nil
}

func (s *UserService) signPair(userID string) (*models.TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// tokensEqual compares in constant time. An empty slot never matches.
func tokensEqual(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
