package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"statusCode": status, "message": msg, "success": status < 400}
	if status < 400 {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", time.Second)
}

func TestLogin_DecodesUserAndTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "pw", body["password"])
		_, hasEmail := body["email"]
		assert.False(t, hasEmail, "empty email is omitted")

		writeEnvelope(w, http.StatusOK, map[string]any{
			"user":         map[string]any{"id": "u1", "username": "alice"},
			"accessToken":  "a1",
			"refreshToken": "r1",
		}, "user logged in successfully")
	})
	c := newTestClient(t, mux)

	res, err := c.Login(context.Background(), LoginRequest{UserName: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "a1", res.AccessToken)
	assert.Equal(t, "r1", res.RefreshToken)
}

func TestLogin_RejectionMapsToSentinel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "invalid credentials")
	})
	c := newTestClient(t, mux)

	_, err := c.Login(context.Background(), LoginRequest{UserName: "alice", Password: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, common.ErrorBadRequest},
		{http.StatusUnauthorized, common.ErrorUnauthorized},
		{http.StatusNotFound, common.ErrorNotFound},
		{http.StatusConflict, common.ErrorConflict},
		{http.StatusTooManyRequests, common.ErrorInternal},
		{http.StatusInternalServerError, common.ErrorInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.ErrorIs(t, &APIError{StatusCode: tt.status, Message: "x"}, tt.want)
		})
	}
}

func TestRefresh_SendsTokenInBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refreshToken"])
		writeEnvelope(w, http.StatusOK, map[string]string{"accessToken": "a2", "refreshToken": "r2"}, "access token refreshed")
	})
	c := newTestClient(t, mux)

	pair, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, &TokenPair{AccessToken: "a2", RefreshToken: "r2"}, pair)
}

func TestAuthenticatedCalls_SendBearer(t *testing.T) {
	var seen []string
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
	}
	mux.HandleFunc("POST /api/v1/users/logout", func(w http.ResponseWriter, r *http.Request) {
		record(w, r)
		writeEnvelope(w, http.StatusOK, map[string]any{}, "user logged out")
	})
	mux.HandleFunc("POST /api/v1/users/change-password", func(w http.ResponseWriter, r *http.Request) {
		record(w, r)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"oldPassword": "old", "newPassword": "new"}, body)
		writeEnvelope(w, http.StatusOK, map[string]any{}, "password changed successfully")
	})
	mux.HandleFunc("GET /api/v1/users/current-user", func(w http.ResponseWriter, r *http.Request) {
		record(w, r)
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@x.io"}, "current user fetched successfully")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.ChangePassword(ctx, "a1", "old", "new"))
	u, err := c.CurrentUser(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", u.Email)
	require.NoError(t, c.Logout(ctx, "a1"))

	assert.Equal(t, []string{
		"POST /api/v1/users/change-password Bearer a1",
		"GET /api/v1/users/current-user Bearer a1",
		"POST /api/v1/users/logout Bearer a1",
	}, seen)
}

func TestRegister_SendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/register", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Alice A", r.FormValue("fullName"))
		assert.Equal(t, "alice@example.com", r.FormValue("email"))
		assert.Equal(t, "alice", r.FormValue("username"))
		assert.Equal(t, "pw", r.FormValue("password"))

		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "png-bytes", string(b))

		_, _, err = r.FormFile("coverImage")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		writeEnvelope(w, http.StatusCreated, map[string]any{"id": "u1", "username": "alice", "avatar": "http://s3/a.png"}, "user registered successfully")
	})
	c := newTestClient(t, mux)

	u, err := c.Register(context.Background(), RegisterRequest{
		FullName: "Alice A",
		Email:    "alice@example.com",
		UserName: "alice",
		Password: "pw",
		Avatar:   &File{Name: "me.png", Content: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://s3/a.png", u.Avatar)
}

func TestDo_NonEnvelopeError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := c.CurrentUser(context.Background(), "a1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestDo_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	_, err := c.CurrentUser(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIsTokenRejected(t *testing.T) {
	assert.True(t, IsTokenRejected(&APIError{StatusCode: http.StatusUnauthorized, Message: common.MsgInvalidAccessToken}))
	assert.True(t, IsTokenRejected(&APIError{StatusCode: http.StatusUnauthorized, Message: common.MsgUnauthorizedRequest}))
	assert.False(t, IsTokenRejected(&APIError{StatusCode: http.StatusUnauthorized, Message: "invalid old password"}))
	assert.False(t, IsTokenRejected(&APIError{StatusCode: http.StatusBadRequest, Message: common.MsgInvalidAccessToken}))
	assert.False(t, IsTokenRejected(ErrUnavailable))
	assert.False(t, IsTokenRejected(nil))
}
