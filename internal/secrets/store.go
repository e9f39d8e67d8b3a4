package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"warebridge/internal/common"
	"warebridge/pkg/errors"
)

const (
	keyringService   = "warebridge"
	saltSize         = 32
	pbkdf2Iterations = 100000
	keySize          = 32 // AES-256
)

// Store holds endpoint passwords in the system keyring when one is
// available, falling back to an AES-GCM encrypted file keyed off
// machine-derived material.
type Store struct {
	useKeyring bool
	masterKey  []byte
	dir        string
}

// NewStore creates a credential store rooted under the user's config dir
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	s := &Store{
		useKeyring: keyringAvailable(),
		dir:        filepath.Join(home, ".warebridge", "credentials"),
	}

	if !s.useKeyring {
		key, err := s.loadMasterKey()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeEncryptionFailed,
				"Failed to initialize credential master key")
		}
		s.masterKey = key
	}

	return s, nil
}

// Set stores a password under the given name
func (s *Store) Set(name, value string) error {
	if s.useKeyring {
		if err := keyring.Set(keyringService, name, value); err != nil {
			return fmt.Errorf("failed to store in keyring: %w", err)
		}
		return nil
	}
	return s.setEncrypted(name, value)
}

// Get retrieves a password stored under the given name
func (s *Store) Get(name string) (string, error) {
	if s.useKeyring {
		value, err := keyring.Get(keyringService, name)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeCredentialNotFound,
				fmt.Sprintf("No stored credential for '%s'", name)).
				WithSuggestions("Run 'warebridge setup' to store credentials")
		}
		return value, nil
	}
	return s.getEncrypted(name)
}

// Delete removes a stored password
func (s *Store) Delete(name string) error {
	if s.useKeyring {
		return keyring.Delete(keyringService, name)
	}
	return os.Remove(s.credentialPath(name))
}

func (s *Store) setEncrypted(name, value string) error {
	encrypted, err := s.encrypt(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeEncryptionFailed, "Failed to encrypt credential")
	}

	if err := os.MkdirAll(s.dir, common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	return os.WriteFile(s.credentialPath(name), []byte(encrypted), common.FilePermissionSecure)
}

func (s *Store) getEncrypted(name string) (string, error) {
	path, err := common.ValidatePath(s.credentialPath(name), s.dir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is validated
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCredentialNotFound,
			fmt.Sprintf("No stored credential for '%s'", name)).
			WithSuggestions("Run 'warebridge setup' to store credentials")
	}

	return s.decrypt(string(data))
}

func (s *Store) credentialPath(name string) string {
	return filepath.Join(s.dir, common.SanitizeName(name)+".cred")
}

func (s *Store) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *Store) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, encryptedData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// loadMasterKey reads the persisted master key, deriving and storing a new
// one on first use.
func (s *Store) loadMasterKey() ([]byte, error) {
	keyPath := filepath.Join(s.dir, ".master")

	data, err := os.ReadFile(keyPath) // #nosec G304 - fixed path under config dir
	if err == nil {
		if len(data) != saltSize+keySize {
			return nil, fmt.Errorf("invalid master key file size")
		}
		return data[saltSize:], nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(machineID()), salt, pbkdf2Iterations, keySize, sha256.New)

	if err := os.MkdirAll(s.dir, common.DirPermissionSecure); err != nil {
		return nil, err
	}
	if err := os.WriteFile(keyPath, append(salt, key...), common.FilePermissionSecure); err != nil {
		return nil, err
	}

	return key, nil
}

// keyringAvailable probes the system keyring with a throwaway entry
func keyringAvailable() bool {
	probe := "warebridge-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}

// machineID derives stable machine-specific material for key derivation
func machineID() string {
	hostname, _ := os.Hostname()
	parts := []string{hostname, runtime.GOOS, runtime.GOARCH}

	if data, err := os.ReadFile("/etc/machine-id"); err == nil {
		parts = append(parts, strings.TrimSpace(string(data)))
	}

	return strings.Join(parts, "|")
}
