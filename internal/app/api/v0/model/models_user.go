package model

import (
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type User struct {
	Identifier  string `json:"Identifier"`
	Email       string `json:"Email"`
	Role        string `json:"Role"`
	AuthMethod  string `json:"AuthMethod"`
	DisplayName string `json:"DisplayName"`
	AvatarUrl   string `json:"AvatarUrl"`

	// Password is only honored on create and update requests, it is never
	// exposed in responses.
	Password string `json:"Password,omitempty"`
}

func NewUser(src *domain.Account) *User {
	return &User{
		Identifier:  string(src.Identifier),
		Email:       src.Email,
		Role:        string(src.Role),
		AuthMethod:  string(src.AuthMethod),
		DisplayName: src.DisplayName,
		AvatarUrl:   src.AvatarUrl,
		Password:    "", // never fill password
	}
}

func NewUsers(src []domain.Account) []User {
	results := make([]User, len(src))
	for i := range src {
		results[i] = *NewUser(&src[i])
	}

	return results
}

func NewDomainAccount(src *User) *domain.Account {
	return &domain.Account{
		Identifier:  domain.AccountIdentifier(src.Identifier),
		Email:       src.Email,
		Role:        domain.Role(src.Role),
		AuthMethod:  domain.AuthMethod(src.AuthMethod),
		DisplayName: src.DisplayName,
		AvatarUrl:   src.AvatarUrl,
		Password:    domain.PrivateString(src.Password),
	}
}
