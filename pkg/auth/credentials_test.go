package auth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func TestCredentialManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	account := &Account{
		Name:         "main",
		ClientID:     "client_id_12345",
		ClientSecret: "client_secret_67890",
		Region:       "eu",
	}

	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if account.LastModified.IsZero() {
		t.Error("Store should stamp LastModified")
	}

	retrieved, err := manager.Retrieve("main")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.ClientID != account.ClientID {
		t.Errorf("ClientID mismatch: got %s, want %s", retrieved.ClientID, account.ClientID)
	}
	if retrieved.ClientSecret != account.ClientSecret {
		t.Errorf("ClientSecret mismatch: got %s, want %s", retrieved.ClientSecret, account.ClientSecret)
	}
	if retrieved.Region != "eu" {
		t.Errorf("Region mismatch: got %s, want eu", retrieved.Region)
	}

	// Sanitization
	sanitized := SanitizeAccount(account)
	if sanitized.ClientSecret == account.ClientSecret {
		t.Error("ClientSecret should be masked")
	}
	if sanitized.ClientSecret != "clie...7890" {
		t.Errorf("Unexpected mask: %s", sanitized.ClientSecret)
	}
	if sanitized.ClientID != account.ClientID {
		t.Error("ClientID should not be masked")
	}

	// Deletion
	if err := manager.Delete("main"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := manager.Retrieve("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
	if err := manager.Delete("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Deleting a missing account should report not found, got %v", err)
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Account{ClientSecret: "s"}); err == nil {
		t.Error("Expected missing client ID error")
	}
	if err := manager.Store(&Account{ClientID: "id"}); err == nil {
		t.Error("Expected missing client secret error")
	}

	account := &Account{ClientID: "id", ClientSecret: "secret"}
	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if account.Name != DefaultAccount {
		t.Errorf("Expected unnamed account to be stored as %q, got %q", DefaultAccount, account.Name)
	}
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = fmt.Errorf("keychain locked")
	backup := NewMockStore()
	manager := NewManagerWithStores(broken, backup)

	if err := manager.Store(&Account{Name: "alt", ClientID: "id", ClientSecret: "secret"}); err != nil {
		t.Fatalf("Expected fallback store to accept account: %v", err)
	}
	if !backup.Exists("alt") {
		t.Error("Account should be in the fallback store")
	}

	backup.StoreError = fmt.Errorf("disk full")
	err := manager.Store(&Account{Name: "other", ClientID: "id", ClientSecret: "secret"})
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("disk full")) {
		t.Errorf("Expected last store error, got %v", err)
	}
}

func TestRetrieveDefault(t *testing.T) {
	t.Setenv("WOWPROFILE_CLIENT_ID", "")
	t.Setenv("WOWPROFILE_CLIENT_SECRET", "")

	store := NewMockStore()
	manager := NewManagerWithStores(store, NewEnvironmentStore())

	if _, err := manager.RetrieveDefault(); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound on empty stores, got %v", err)
	}

	_ = store.Store(&Account{Name: "old", ClientID: "old", ClientSecret: "s", LastModified: time.Now().Add(-time.Hour)})
	_ = store.Store(&Account{Name: "new", ClientID: "new", ClientSecret: "s", LastModified: time.Now()})

	account, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve default: %v", err)
	}
	if account.Name != "new" {
		t.Errorf("Expected most recent account, got %s", account.Name)
	}

	_ = store.Store(&Account{Name: DefaultAccount, ClientID: "dflt", ClientSecret: "s", LastModified: time.Now().Add(-2 * time.Hour)})
	account, _ = manager.RetrieveDefault()
	if account.Name != DefaultAccount {
		t.Errorf("Expected the default account, got %s", account.Name)
	}

	t.Setenv("WOWPROFILE_CLIENT_ID", "env_id")
	t.Setenv("WOWPROFILE_CLIENT_SECRET", "env_secret")
	account, _ = manager.RetrieveDefault()
	if account.Name != EnvAccount || account.ClientID != "env_id" {
		t.Errorf("Expected environment credentials to win, got %+v", account)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "creds", "credentials.enc")
	t.Setenv("WOWPROFILE_PASSPHRASE", "test_passphrase_123")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{
		Name:         "encrypted",
		ClientID:     "encrypted_client_id",
		ClientSecret: "encrypted_client_secret",
	}
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("encrypted")
	if err != nil {
		t.Fatalf("Failed to retrieve from encrypted file: %v", err)
	}
	if retrieved.ClientSecret != account.ClientSecret {
		t.Errorf("ClientSecret mismatch after encryption/decryption")
	}

	// File should not contain plaintext credentials
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(fileContent, []byte("encrypted_client_secret")) {
		t.Error("File contains plaintext client secret")
	}
	if bytes.Contains(fileContent, []byte("encrypted_client_id")) {
		t.Error("File contains plaintext client ID")
	}

	// A different passphrase cannot read it
	t.Setenv("WOWPROFILE_PASSPHRASE", "wrong")
	other, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create second store: %v", err)
	}
	if _, err := other.Retrieve("encrypted"); err == nil {
		t.Error("Expected decryption with the wrong passphrase to fail")
	}

	// Deleting the last account removes the file
	if err := store.Delete("encrypted"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := os.Stat(tempFile); !os.IsNotExist(err) {
		t.Error("Expected credentials file to be removed")
	}
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv("WOWPROFILE_PASSPHRASE", "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}
	if err := store.Store(&Account{Name: "a", ClientID: "id", ClientSecret: "secret"}); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, ".passphrase"))
	if err != nil {
		t.Fatalf("Expected generated passphrase file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Passphrase file mode = %v, want 0600", info.Mode().Perm())
	}

	// A second store picks up the same passphrase
	reopened, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if !reopened.Exists("a") {
		t.Error("Reopened store should decrypt existing credentials")
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("WOWPROFILE_CLIENT_ID", "env_id")
	t.Setenv("WOWPROFILE_CLIENT_SECRET", "env_secret")
	t.Setenv("WOWPROFILE_REGION", "kr")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if account.ClientID != "env_id" || account.ClientSecret != "env_secret" || account.Region != "kr" {
		t.Errorf("Unexpected environment account: %+v", account)
	}
	if _, err := store.Retrieve("someone-else"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Error("Environment store should only answer to its own name")
	}

	if err := store.Store(&Account{}); err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}

	t.Setenv("WOWPROFILE_CLIENT_SECRET", "")
	if store.Exists(EnvAccount) {
		t.Error("Incomplete environment credentials should not exist")
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	if err != nil {
		t.Fatalf("Mock keyring should be available: %v", err)
	}

	for _, name := range []string{"beta", "alpha"} {
		if err := store.Store(&Account{Name: name, ClientID: name + "_id", ClientSecret: "secret"}); err != nil {
			t.Fatalf("Failed to store %s: %v", name, err)
		}
	}
	// storing again does not duplicate the index entry
	_ = store.Store(&Account{Name: "alpha", ClientID: "alpha_id2", ClientSecret: "secret"})

	accounts, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Name != "alpha" || accounts[0].ClientID != "alpha_id2" {
		t.Errorf("Unexpected first account: %+v", accounts[0])
	}

	if err := store.Delete("alpha"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if store.Exists("alpha") {
		t.Error("Deleted account still exists")
	}
	if err := store.Delete("alpha"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}

	accounts, _ = store.List()
	if len(accounts) != 1 || accounts[0].Name != "beta" {
		t.Errorf("Expected only beta to remain, got %d accounts", len(accounts))
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	if err := store.Store(&Account{Name: "mock", ClientID: "id", ClientSecret: "secret"}); err != nil {
		t.Errorf("Failed to store account: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}
	if !store.Exists("mock") {
		t.Error("Account should exist")
	}

	got, err := store.Retrieve("mock")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	got.ClientSecret = "changed"
	if again, _ := store.Retrieve("mock"); again.ClientSecret != "secret" {
		t.Errorf("Retrieve should return a copy, store now holds %q", again.ClientSecret)
	}

	store.ListError = fmt.Errorf("injected error")
	if _, err := store.List(); err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}
