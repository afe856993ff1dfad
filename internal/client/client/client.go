package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const apiPrefix = "/api/v1/users"

// User mirrors the public user document returned by the server.
type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	UserName   string    `json:"username"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User *User `json:"user"`
	TokenPair
}

// File is an upload attached to a registration.
type File struct {
	Name    string
	Content io.Reader
}

type RegisterRequest struct {
	FullName   string
	Email      string
	UserName   string
	Password   string
	Avatar     *File
	CoverImage *File
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	UserName string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Client is the API surface used by the CLI.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := []struct{ name, value string }{
		{"fullName", req.FullName},
		{"email", req.Email},
		{"username", req.UserName},
		{"password", req.Password},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if err := writeFile(mw, "avatar", req.Avatar); err != nil {
		return nil, err
	}
	if err := writeFile(mw, "coverImage", req.CoverImage); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/register", mw.FormDataContentType(), &body, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func writeFile(mw *multipart.Writer, field string, f *File) error {
	if f == nil {
		return nil
	}
	part, err := mw.CreateFormFile(field, f.Name)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("read %s: %w", field, err)
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var res LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/login", req, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/refresh-token", body, "", &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", "", nil, accessToken, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/change-password", body, accessToken, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/current-user", "", nil, accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any, accessToken string, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(b), accessToken, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
