package secrets

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *Store {
	t.Helper()

	key := make([]byte, keySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	return &Store{
		useKeyring: false,
		masterKey:  key,
		dir:        t.TempDir(),
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newFileStore(t)

	encrypted, err := s.encrypt("sw0rdf1sh")
	require.NoError(t, err)
	assert.NotEqual(t, "sw0rdf1sh", encrypted)

	decrypted, err := s.decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "sw0rdf1sh", decrypted)
}

func TestEncryptProducesUniqueCiphertext(t *testing.T) {
	s := newFileStore(t)

	first, err := s.encrypt("same value")
	require.NoError(t, err)
	second, err := s.encrypt("same value")
	require.NoError(t, err)

	// fresh nonce per call
	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsTamperedData(t *testing.T) {
	s := newFileStore(t)

	_, err := s.decrypt("not base64!!")
	assert.Error(t, err)

	_, err = s.decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestSetGetDeleteEncrypted(t *testing.T) {
	s := newFileStore(t)

	require.NoError(t, s.Set("Sales/admin", "hunter2"))

	value, err := s.Get("Sales/admin")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	require.NoError(t, s.Delete("Sales/admin"))

	_, err = s.Get("Sales/admin")
	assert.Error(t, err)
}

func TestGetMissingCredential(t *testing.T) {
	s := newFileStore(t)

	_, err := s.Get("never-stored")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never-stored")
}

func TestMasterKeyPersists(t *testing.T) {
	s := &Store{dir: t.TempDir()}

	first, err := s.loadMasterKey()
	require.NoError(t, err)
	require.Len(t, first, keySize)

	second, err := s.loadMasterKey()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
