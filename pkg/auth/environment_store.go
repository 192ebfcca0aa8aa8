package auth

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envUser    = "KIDPLAN_USER"
	envPass    = "KIDPLAN_PASS"
	envKid     = "KIDPLAN_KID"
	envKidName = "KIDPLAN_KID_NAME"
)

// EnvironmentStore implements CredentialStore using KIDPLAN_* variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve reads the account from the environment. An empty email matches
// whatever account the environment holds.
func (e *EnvironmentStore) Retrieve(email string) (*Account, error) {
	user := os.Getenv(envUser)
	pass := os.Getenv(envPass)
	if user == "" || pass == "" {
		return nil, ErrCredentialsNotFound
	}
	if email != "" && !strings.EqualFold(email, user) {
		return nil, ErrCredentialsNotFound
	}

	account := &Account{
		Email:            user,
		Password:         pass,
		KindergartenName: os.Getenv(envKidName),
		LastModified:     time.Now(),
	}
	if kid, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(envKid)), 10, 64); err == nil {
		account.KindergartenID = kid
	}

	return account, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(email string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(email string) bool {
	_, err := e.Retrieve(email)
	return err == nil
}
