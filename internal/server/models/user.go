package models

import "time"

// User is the stored identity. RefreshToken holds the single active refresh
// token; "" means the user has no session.
type User struct {
	ID           string
	FullName     string
	Email        string
	UserName     string
	PasswordHash string
	Avatar       string
	CoverImage   string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is what leaves the service: no password hash, no refresh token.
type PublicUser struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	UserName   string    `json:"username"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		UserName:   u.UserName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
