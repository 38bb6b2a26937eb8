package auth

import (
	"os"
	"time"

	"wowprofile/pkg/config"
)

// EnvironmentStore reads client credentials from WOWPROFILE_CLIENT_ID and
// WOWPROFILE_CLIENT_SECRET. It is read-only.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// EnvAccount is the name the environment credentials are listed under.
const EnvAccount = "env"

// Retrieve returns the environment credentials. Only the empty name and
// EnvAccount match.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	if name != "" && name != EnvAccount {
		return nil, ErrCredentialsNotFound
	}
	clientID := os.Getenv(config.EnvPrefix + "CLIENT_ID")
	clientSecret := os.Getenv(config.EnvPrefix + "CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Name:         EnvAccount,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Region:       os.Getenv(config.EnvPrefix + "REGION"),
		LastModified: time.Now(),
	}, nil
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
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
