package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	cleaned, err := CleanPath("/tmp/runs/20260101")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs/20260101", cleaned)
}

func TestCleanPathRejectsTraversal(t *testing.T) {
	_, err := CleanPath("/tmp/runs/../../etc/passwd")
	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	valid, err := ValidatePath(filepath.Join(base, "Sales", "Tables"), base)
	require.NoError(t, err)
	assert.Contains(t, valid, base)

	_, err = ValidatePath("/etc/passwd", base)
	assert.Error(t, err)
}

func TestJoinPath(t *testing.T) {
	base := t.TempDir()

	joined, err := JoinPath(base, "Sales", "dbo", "Orders.sql")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Sales", "dbo", "Orders.sql"), joined)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sales", "Sales"},
		{"Sales DW", "Sales_DW"},
		{"a/b\\c", "a_b_c"},
		{"odd:*?name", "odd___name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in))
	}
}
