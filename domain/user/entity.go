package user

import (
	"time"
)

// User represents an account in the system.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null;size:150"`
	Email          string `gorm:"uniqueIndex;not null;size:254"`
	PasswordHash   string `gorm:"not null;type:text"`
	FirstName      string `gorm:"size:150"`
	LastName       string `gorm:"size:150"`
	IsStaff        bool   `gorm:"not null"`
	IsSuperuser    bool   `gorm:"not null"`
	IsActive       bool   `gorm:"not null"`
	Phone          string `gorm:"size:20"`
	Bio            string `gorm:"type:text"`
	ProfilePicture *string
	DateJoined     time.Time
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Profile holds optional address details of a user.
type Profile struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex;not null"`
	User       *User  `gorm:"constraint:OnDelete:CASCADE"`
	Address    string `gorm:"type:text"`
	City       string `gorm:"size:100"`
	Country    string `gorm:"size:100"`
	PostalCode string `gorm:"size:20"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for the Profile entity.
func (Profile) TableName() string {
	return "profiles"
}

// PublicUser is the externally visible projection of a User.
// Password, superuser flag, groups and permissions are never part of it.
type PublicUser struct {
	ID             uint       `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	IsStaff        bool       `json:"isStaff"`
	IsActive       bool       `json:"isActive"`
	Phone          string     `json:"phone"`
	Bio            string     `json:"bio"`
	ProfilePicture *string    `json:"profilePicture"`
	DateJoined     time.Time  `json:"dateJoined"`
	LastLogin      *time.Time `json:"lastLogin"`
}

// Public returns the allow-listed view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsStaff:        u.IsStaff,
		IsActive:       u.IsActive,
		Phone:          u.Phone,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		DateJoined:     u.DateJoined,
		LastLogin:      u.LastLogin,
	}
}

// Identity is the caller resolved from a request's token.
// The zero value is the anonymous caller.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous reports whether the caller presented no usable token.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// CanModify reports whether the caller may change the account with the given id.
func (i Identity) CanModify(userID uint) bool {
	return !i.IsAnonymous() && (i.IsStaff || i.UserID == userID)
}

// TokenPayload is the decoded, client-visible content of a token.
type TokenPayload struct {
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	OrigIat  int64  `json:"origIat"`
}
