package entity

import (
	"time"

	"github.com/google/uuid"
)

// CredentialType names a single method of logging in.
type CredentialType string

const (
	// CredentialTypePassword is a username/password credential, the only type
	// with an implemented login path.
	CredentialTypePassword CredentialType = "password"
	// CredentialTypeKakao is reserved for Kakao social login.
	CredentialTypeKakao CredentialType = "kakao"
	// CredentialTypeNaver is reserved for Naver social login.
	CredentialTypeNaver CredentialType = "naver"
	// CredentialTypeGoogle is reserved for Google social login.
	CredentialTypeGoogle CredentialType = "google"
)

// String returns the string representation of the CredentialType.
func (t CredentialType) String() string {
	return string(t)
}

// IsValid checks if the CredentialType is a known value.
func (t CredentialType) IsValid() bool {
	switch t {
	case CredentialTypePassword, CredentialTypeKakao, CredentialTypeNaver, CredentialTypeGoogle:
		return true
	default:
		return false
	}
}

// Credential represents one authentication method. Accounts and credentials
// are linked many-to-many through the account_credentials join table; lookups
// resolve the first linked account.
type Credential struct {
	ID         uuid.UUID      // The unique ID for this credential record itself.
	Type       CredentialType // Which login method this credential implements.
	Username   string         // Login identifier, unique per credential type.
	SecretHash string         // bcrypt hash of the password; empty for social types.
	AccountID  int64          // The linked account, resolved via the join table on lookup.
	CreatedAt  time.Time      // Timestamp of when this credential was created.
}
