// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The nullable columns use zero values rather than pointers: ResumeText,
// Photo and ResetCode use "" as their "absent" value, ResetCodeExpiry uses
// the zero time. Simpler to work with and safe to display. The pairing
// invariant (ResetCode and ResetCodeExpiry are always both set or both
// cleared) is enforced by the service layer, which only writes them together.
//
// PasswordHash is tagged `json:"-"` so the stored bcrypt hash can never leak
// through an encoded response, no matter which handler serializes a User by
// accident. Handlers should still prefer the view types below.
type User struct {
	ID              string    `json:"id"             db:"id"`
	Name            string    `json:"name"           db:"name"`
	Email           string    `json:"email"          db:"email"`
	PasswordHash    string    `json:"-"              db:"password_hash"`
	ResetCode       string    `json:"-"              db:"reset_code"`
	ResetCodeExpiry time.Time `json:"-"              db:"reset_code_expiry"`
	ResumeText      string    `json:"resumeText"     db:"resume_text"`
	Photo           string    `json:"-"              db:"photo"`
	ResumeUploaded  bool      `json:"resumeUploaded" db:"resume_uploaded"`
	CreatedAt       time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"      db:"updated_at"`
}

// HasResume reports whether both halves of an upload are present.
//
// This is the canonical derivation of the "resume uploaded" state. Every
// read path (login view, profile, admin listing) uses it instead of trusting
// the cached ResumeUploaded column.
func (u *User) HasResume() bool {
	return u.ResumeText != "" && u.Photo != ""
}

// UserView is the account summary returned by login and admin listings.
// It carries only non-secret fields plus the derived presentation values.
type UserView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ResumeUploaded bool   `json:"resumeUploaded"`
	ProfileImage   string `json:"profileImage"`
}

// ProfileView is the full self-service profile: UserView plus the extracted
// resume text. The raw photo bytes stay server-side; clients get ProfileImage.
type ProfileView struct {
	UserView
	ResumeText string `json:"resumeText"`
}
