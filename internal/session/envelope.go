package session

import (
	"encoding/json"
	"log/slog"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// EnvelopeVersion is the current version of the persisted identity envelope.
// It must be incremented whenever the envelope layout changes in an incompatible way.
const EnvelopeVersion = 1

// Envelope is the serialized form of an authenticated identity. Sessions written by
// older or newer releases carry a different version and are treated as logged out
// instead of being misinterpreted.
type Envelope struct {
	Version int `json:"version"`

	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarUrl   string `json:"avatarUrl"`
	Role        string `json:"role"`
	AuthMethod  string `json:"authMethod"`
}

// EncodeIdentity serializes an identity into a versioned envelope.
func EncodeIdentity(identity domain.Identity) []byte {
	env := Envelope{
		Version:     EnvelopeVersion,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		AvatarUrl:   identity.AvatarUrl,
		Role:        string(identity.Role),
		AuthMethod:  string(identity.AuthMethod),
	}

	data, err := json.Marshal(env)
	if err != nil {
		// all envelope fields are plain strings, marshaling cannot fail
		return nil
	}

	return data
}

// DecodeSubject deserializes a persisted envelope back into a subject. It never
// returns an error: corrupted payloads, unknown versions and invalid field values
// all decode to the anonymous subject, so a broken session degrades to a fresh
// login instead of a crash.
func DecodeSubject(data []byte) domain.Subject {
	if len(data) == 0 {
		return domain.Anonymous()
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Debug("discarding malformed session envelope", "error", err)
		return domain.Anonymous()
	}

	if env.Version != EnvelopeVersion {
		slog.Debug("discarding session envelope with unknown version", "version", env.Version)
		return domain.Anonymous()
	}

	role := domain.Role(env.Role)
	if !role.Valid() || env.Email == "" {
		slog.Debug("discarding session envelope with invalid contents", "role", env.Role)
		return domain.Anonymous()
	}

	return domain.Authenticated(domain.Identity{
		DisplayName: env.DisplayName,
		Email:       env.Email,
		AvatarUrl:   env.AvatarUrl,
		Role:        role,
		AuthMethod:  domain.AuthMethod(env.AuthMethod),
	})
}
