package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type loginForm struct {
	Email    string `json:"email" validate:"omitempty,email"`
	UserName string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type refreshForm struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordForm struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

var validate = validator.New()

// formMessages maps field and tag to the message shown to the client.
var formMessages = map[string]string{
	"Email.email":          "invalid email",
	"Password.required":    "username or email and password are required",
	"OldPassword.required": "old and new password are required",
	"NewPassword.required": "old and new password are required",
}

// maxJSONBody caps login, refresh and change-password bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.BadRequest("request body too large")
		}
		return common.BadRequest("invalid request body")
	}
	return nil
}

// bindJSON decodes and validates dst.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return validateForm(dst)
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := formMessages[fe.Field()+"."+fe.Tag()]; ok {
				return common.BadRequest(msg)
			}
		}
	}
	return common.BadRequest("invalid request")
}
