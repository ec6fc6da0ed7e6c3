package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// DirectoryClient talks to an external user service over HTTP. It offers the same
// operations as the embedded directory, so the rest of the application does not
// care which directory is configured.
type DirectoryClient struct {
	cfg    *config.DirectoryConfig
	client *http.Client

	baseUrl string
}

// accountRecord is the wire format of the external user service.
type accountRecord struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	AvatarUrl   string `json:"avatarUrl"`
	Role        string `json:"role"`
	AuthMethod  string `json:"authMethod"`
}

func (r accountRecord) toAccount() *domain.Account {
	role := domain.Role(r.Role)
	if !role.Valid() {
		role = domain.RoleUser
	}

	return &domain.Account{
		Identifier:  domain.AccountIdentifier(r.Id),
		Email:       strings.ToLower(r.Email),
		DisplayName: r.DisplayName,
		AvatarUrl:   r.AvatarUrl,
		Role:        role,
		AuthMethod:  domain.AuthMethod(r.AuthMethod),
	}
}

func NewDirectoryClient(cfg *config.DirectoryConfig) (*DirectoryClient, error) {
	if cfg.BaseUrl == "" {
		return nil, fmt.Errorf("missing base URL for external user service")
	}

	return &DirectoryClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
	}, nil
}

// Authenticate verifies an email and password pair against the external user service.
func (c *DirectoryClient) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	body, err := json.Marshal(map[string]string{
		"email":    strings.ToLower(email),
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	record, err := c.do(ctx, http.MethodPost, "/users/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return record.toAccount(), nil
}

// GetAccountByEmail fetches an account by its email address.
func (c *DirectoryClient) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	record, err := c.do(ctx, http.MethodGet, "/users/email?email="+url.QueryEscape(strings.ToLower(email)), nil)
	if err != nil {
		return nil, err
	}

	return record.toAccount(), nil
}

// RegisterAccount creates a new account in the external user service.
func (c *DirectoryClient) RegisterAccount(ctx context.Context, account *domain.Account) error {
	body, err := json.Marshal(accountRecord{
		Id:          string(account.Identifier),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		AvatarUrl:   account.AvatarUrl,
		Role:        string(account.Role),
		AuthMethod:  string(account.AuthMethod),
	})
	if err != nil {
		return err
	}

	record, err := c.do(ctx, http.MethodPost, "/users", bytes.NewReader(body))
	if err != nil {
		return err
	}

	account.Identifier = domain.AccountIdentifier(record.Id)

	return nil
}

// UpdateAccountInfo pushes profile changes to the external user service.
func (c *DirectoryClient) UpdateAccountInfo(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	body, err := json.Marshal(accountRecord{
		Id:          string(account.Identifier),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		AvatarUrl:   account.AvatarUrl,
		Role:        string(account.Role),
		AuthMethod:  string(account.AuthMethod),
	})
	if err != nil {
		return nil, err
	}

	record, err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(string(account.Identifier)),
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return record.toAccount(), nil
}

func (c *DirectoryClient) do(ctx context.Context, method, path string, body *bytes.Reader) (*accountRecord, error) {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		bodyReader = body
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ApiToken)
	}

	response, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user service unreachable: %w", err)
	}
	defer internal.LogClose(response.Body)

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var record accountRecord
		if err := json.NewDecoder(response.Body).Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to parse user service response: %w", err)
		}
		return &record, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrInvalidCredentials
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	case http.StatusConflict:
		return nil, domain.ErrNotUnique
	default:
		return nil, fmt.Errorf("user service returned unexpected status %d", response.StatusCode)
	}
}
