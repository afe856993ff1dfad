package httpapi

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/uploads"
)

const maxUploadMemory = 10 << 20

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	RefreshAccessToken(ctx context.Context, presented string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error)
}

type handler struct {
	users   UserService
	cookies CookieConfig
	logger  logging.Logger
}

type loginResponse struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if common.StatusCode(err) >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.fail(w, r, common.BadRequest("invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := services.RegisterInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		UserName: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	avatar, closeAvatar, err := formObject(r, "avatar")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeAvatar()
	in.Avatar = avatar

	cover, closeCover, err := formObject(r, "coverImage")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeCover()
	in.CoverImage = cover

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, "user registered successfully")
}

// formObject opens an optional file field. A missing field yields nil.
func formObject(r *http.Request, field string) (*uploads.Object, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, common.BadRequest("invalid " + field + " file")
	}

	obj := &uploads.Object{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return obj, func() { closeFile(file) }, nil
}

func closeFile(f multipart.File) { _ = f.Close() }

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := bindJSON(w, r, &form); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), services.LoginInput{
		Email:    form.Email,
		UserName: form.UserName,
		Password: form.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setTokens(w, res.Tokens)
	writeSuccess(w, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "user logged in successfully")
}

// refresh takes the token from the cookie and falls back to the body.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	presented := cookieValue(r, common.RefreshTokenCookieName)
	if presented == "" {
		var form refreshForm
		if err := decodeJSON(w, r, &form); err != nil {
			h.fail(w, r, err)
			return
		}
		presented = form.RefreshToken
	}

	pair, err := h.users.RefreshAccessToken(r.Context(), presented)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setTokens(w, *pair)
	writeSuccess(w, http.StatusOK, pair, "access token refreshed")
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.users.Logout(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.clearTokens(w)
	writeSuccess(w, http.StatusOK, nil, "user logged out")
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var form changePasswordForm
	if err := bindJSON(w, r, &form); err != nil {
		h.fail(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	if err := h.users.ChangePassword(r.Context(), userID, form.OldPassword, form.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "password changed successfully")
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, "current user fetched successfully")
}
