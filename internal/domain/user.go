package domain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type AccountIdentifier string

// Account is a directory record of the user service. Password accounts carry a bcrypt
// hash; OAuth accounts are marked by their auth method and never store a password.
type Account struct {
	BaseModel

	Identifier AccountIdentifier `gorm:"primaryKey;column:identifier"`
	Email      string            `gorm:"uniqueIndex;column:email"`
	AuthMethod AuthMethod        `gorm:"column:auth_method"`
	Role       Role              `gorm:"column:role"`

	DisplayName string
	AvatarUrl   string

	Password PrivateString `gorm:"column:password"`
}

// Identity converts the directory record into the normalized identity form that
// sessions and the route guard operate on.
func (a *Account) Identity() Identity {
	avatar := a.AvatarUrl
	if avatar == "" {
		avatar = AvatarNone
	}

	return Identity{
		DisplayName: a.DisplayName,
		Email:       a.Email,
		AvatarUrl:   avatar,
		Role:        a.Role,
		AuthMethod:  a.AuthMethod,
	}
}

func (a *Account) IsOauthAccount() bool {
	return a.AuthMethod != AuthMethodPassword
}

// CheckPassword verifies a plaintext password against the stored bcrypt hash.
// Accounts provisioned through OAuth have no password and always fail with
// ErrWrongAuthMethod.
func (a *Account) CheckPassword(password string) error {
	if a.IsOauthAccount() {
		return ErrWrongAuthMethod
	}

	if a.Password == "" {
		return errors.New("empty account password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

func (a *Account) HashPassword() error {
	if a.Password == "" {
		return nil // nothing to hash
	}

	if _, err := bcrypt.Cost([]byte(a.Password)); err == nil {
		return nil // password already hashed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = PrivateString(hash)

	return nil
}

func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("invalid email address: %s", a.Email)
	}
	if !a.Role.Valid() {
		return fmt.Errorf("invalid role: %s", a.Role)
	}
	if a.AuthMethod == AuthMethodPassword && a.Password == "" {
		return errors.New("password accounts require a password")
	}
	if a.IsOauthAccount() && a.Password != "" {
		return errors.New("oauth accounts must not carry a password")
	}

	return nil
}

func (a *Account) CopyCalculatedAttributes(src *Account) {
	a.BaseModel = src.BaseModel
}
