// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	domainerrors "authgate/internal/domain/errors"

	"github.com/google/uuid"
)

const (
	// DefaultProfilePicture is assigned to every new account.
	DefaultProfilePicture = "/default-avatar.png"
	// DefaultLastName is used when signup omits a last name.
	DefaultLastName = "User"

	UsernameMinLength = 3
	UsernameMaxLength = 20
	NameMinLength     = 2
	NameMaxLength     = 50
	BioMaxLength      = 500
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Account is a registered identity that can log in.
type Account struct {
	ID           uuid.UUID  // Primary key.
	Email        string     // Unique, lowercased and trimmed.
	Username     string     // Unique, lowercased and trimmed.
	PasswordHash string     // bcrypt digest. Never leaves the service.
	FirstName    string     // 2 to 50 characters.
	LastName     string     // 2 to 50 characters.
	Profile      Profile    // Optional public profile data.
	Role         Role       // Defaults to RoleUser.
	IsActive     bool       // Defaults to true.
	LastLogin    *time.Time // Nil until the first successful login.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional presentation fields of an account.
type Profile struct {
	Bio     string
	Picture string
}

// NewAccount builds an account with the defaults every signup receives.
// firstName and lastName may be empty; they are then derived from the username.
func NewAccount(username, email, passwordHash, firstName, lastName string) *Account {
	username = NormalizeUsername(username)

	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		firstName = DefaultFirstName(username)
	}

	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		lastName = DefaultLastName
	}

	return &Account{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Profile:      Profile{Picture: DefaultProfilePicture},
		Role:         RoleUser,
		IsActive:     true,
	}
}

// FullName is first and last name separated by a space.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// RecordLogin stamps the account with the time of a successful login.
func (a *Account) RecordLogin(at time.Time) {
	a.LastLogin = &at
}

// Validate checks the persisted-field rules and reports every violation at once.
func (a *Account) Validate() error {
	var fields []domainerrors.FieldError
	add := func(field, message string) {
		fields = append(fields, domainerrors.FieldError{Field: field, Message: message})
	}

	switch {
	case a.Email == "":
		add("email", "Email is required")
	case !emailPattern.MatchString(a.Email):
		add("email", "Please enter a valid email")
	}

	usernameLen := utf8.RuneCountInString(a.Username)
	switch {
	case a.Username == "":
		add("username", "Username is required")
	case usernameLen < UsernameMinLength:
		add("username", "Username must be at least 3 characters")
	case usernameLen > UsernameMaxLength:
		add("username", "Username cannot exceed 20 characters")
	case !usernamePattern.MatchString(a.Username):
		add("username", "Username can only contain lowercase letters, numbers, and underscores")
	}

	if a.PasswordHash == "" {
		add("password", "Password is required")
	}

	validateName(add, "firstName", "First name", a.FirstName)
	validateName(add, "lastName", "Last name", a.LastName)

	if utf8.RuneCountInString(a.Profile.Bio) > BioMaxLength {
		add("profile.bio", "Bio cannot exceed 500 characters")
	}

	if !a.Role.IsValid() {
		add("role", "Role must be one of user, admin, moderator")
	}

	if len(fields) > 0 {
		return domainerrors.NewValidationError(fields...)
	}

	return nil
}

func validateName(add func(field, message string), field, label, value string) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		add(field, label+" is required")
	case n < NameMinLength:
		add(field, label+" must be at least 2 characters")
	case n > NameMaxLength:
		add(field, label+" cannot exceed 50 characters")
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// DefaultFirstName is the username up to its first '-' or '_'.
func DefaultFirstName(username string) string {
	if i := strings.IndexAny(username, "-_"); i >= 0 {
		return username[:i]
	}

	return username
}
