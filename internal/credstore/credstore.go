package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the name of the service used for keyring storage
	ServiceName = "CloudSentry"

	// availabilityProbeKey is the keyring entry used to probe whether the
	// platform keyring is usable
	availabilityProbeKey = "availability_probe"
)

var (
	// ErrSecureStorageUnavailable is returned when secure storage is not available
	ErrSecureStorageUnavailable = errors.New("secure storage is not available")

	// ErrProfileNotFound is returned when no credentials exist for a profile
	ErrProfileNotFound = errors.New("no stored credentials for profile")
)

// Credentials holds static cloud access credentials for one named profile.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty"`
}

// Store represents a secure credential storage interface
type Store interface {
	// Save stores the credentials for the given profile securely
	Save(profile string, creds Credentials) error

	// Load loads the credentials for the given profile
	Load(profile string) (Credentials, error)

	// Delete deletes the credentials for the given profile
	Delete(profile string) error

	// IsAvailable returns true if the storage backend is available
	IsAvailable() bool
}

// DefaultDir returns the directory used for file-backed credential
// storage when the platform keyring is unavailable. It lives under the
// user configuration directory so stored profiles survive reboots.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cloudsentry")
	}
	return filepath.Join(dir, "cloudsentry")
}

// NewStore creates a new credential store instance.
// It tries to use platform-specific secure storage first,
// and falls back to file-based storage if not available.
func NewStore(fallbackDir string) Store {
	secureStore := newKeyringStore()
	if secureStore.IsAvailable() {
		return secureStore
	}

	return newFileStore(fallbackDir)
}

// keyringStore implements Store using platform-specific secure storage
type keyringStore struct {
	available bool
}

// newKeyringStore creates a new keyring-backed store, probing the
// platform keyring with a throwaway entry to determine availability.
func newKeyringStore() *keyringStore {
	available := true

	_ = keyring.Delete(ServiceName, availabilityProbeKey)

	testValue := fmt.Sprintf("probe-%d", time.Now().UnixNano())
	err := keyring.Set(ServiceName, availabilityProbeKey, testValue)
	if err != nil {
		available = false
	} else {
		retrievedValue, err := keyring.Get(ServiceName, availabilityProbeKey)
		if err != nil || retrievedValue != testValue {
			available = false
		}
		_ = keyring.Delete(ServiceName, availabilityProbeKey)
	}

	return &keyringStore{
		available: available,
	}
}

// Save stores the credentials in the secure keyring under the profile name
func (s *keyringStore) Save(profile string, creds Credentials) error {
	if !s.available {
		return ErrSecureStorageUnavailable
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := keyring.Set(ServiceName, profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in secure keyring: %w", err)
	}

	return nil
}

// Load loads the credentials for the profile from the secure keyring
func (s *keyringStore) Load(profile string) (Credentials, error) {
	var creds Credentials

	if !s.available {
		return creds, ErrSecureStorageUnavailable
	}

	data, err := keyring.Get(ServiceName, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return creds, ErrProfileNotFound
		}
		return creds, fmt.Errorf("failed to load from secure keyring: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return creds, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return creds, nil
}

// Delete deletes the credentials for the profile from the secure keyring
func (s *keyringStore) Delete(profile string) error {
	if !s.available {
		return ErrSecureStorageUnavailable
	}

	if err := keyring.Delete(ServiceName, profile); err != nil {
		return fmt.Errorf("failed to delete from secure keyring: %w", err)
	}

	return nil
}

// IsAvailable returns true if secure keyring storage is available
func (s *keyringStore) IsAvailable() bool {
	return s.available
}

// fileStore implements Store using file-based storage with 0600 permissions
type fileStore struct {
	dir string
}

// newFileStore creates a new file-based store (internal use)
func newFileStore(dir string) *fileStore {
	return &fileStore{dir: dir}
}

// NewFileStore creates a new file-based store (exported for direct use)
func NewFileStore(dir string) Store {
	return newFileStore(dir)
}

// profilePath returns the storage path for a profile, rejecting names
// that would escape the storage directory.
func (s *fileStore) profilePath(profile string) (string, error) {
	if profile == "" || profile != filepath.Base(profile) {
		return "", fmt.Errorf("invalid profile name: %q", profile)
	}
	return filepath.Join(s.dir, "cloudsentry_creds_"+profile+".json"), nil
}

// Save stores the credentials in a file
func (s *fileStore) Save(profile string, creds Credentials) error {
	path, err := s.profilePath(profile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile) // Clean up the temp file
		return fmt.Errorf("failed to finalize credentials: %w", err)
	}

	return nil
}

// Load loads the credentials for the profile from a file
func (s *fileStore) Load(profile string) (Credentials, error) {
	var creds Credentials

	path, err := s.profilePath(profile)
	if err != nil {
		return creds, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, ErrProfileNotFound
		}
		return creds, fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return creds, nil
}

// Delete deletes the credentials file for the profile
func (s *fileStore) Delete(profile string) error {
	path, err := s.profilePath(profile)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}

	return nil
}

// IsAvailable returns true if file-based storage is available
func (s *fileStore) IsAvailable() bool {
	return true
}
