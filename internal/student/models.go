package student

import (
	"strings"
	"time"
)

// Branches a student can register under.
const (
	BranchMechanical  = "mechanical"
	BranchCivil       = "civil"
	BranchElectrical  = "electrical"
	BranchElectronics = "electronics"
	BranchComputer    = "computer"
)

var branches = map[string]bool{
	BranchMechanical:  true,
	BranchCivil:       true,
	BranchElectrical:  true,
	BranchElectronics: true,
	BranchComputer:    true,
}

// ValidBranch reports whether branch is one of the fixed set.
func ValidBranch(branch string) bool {
	return branches[strings.ToLower(strings.TrimSpace(branch))]
}

// Account is a registered student.
type Account struct {
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Branch       string     `json:"branch"`
	FullName     string     `json:"full_name"`
	AvatarURL    string     `json:"avatar_url"`
	Interests    string     `json:"interests"`
	Goals        string     `json:"goals"`
	ExtraInfo    string     `json:"extra_info"`
	Points       int        `json:"points"`
	RollNo       *int       `json:"roll_no,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Session is an opaque server-side session row. A session whose
// expiry has passed is treated the same as one that does not exist.
type Session struct {
	Token        string    `json:"token"`
	StudentEmail string    `json:"student_email"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// PasswordReset is a one-shot reset token with an expiry.
type PasswordReset struct {
	Token        string
	StudentEmail string
	ExpiresAt    time.Time
	Used         bool
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Branch   string
	FullName string
	RollNo   *int
}

// ProfileUpdate carries the mutable profile fields. Empty strings
// leave the current value untouched.
type ProfileUpdate struct {
	FullName  string
	AvatarURL string
	Interests string
	Goals     string
	ExtraInfo string
	RollNo    *int
}
