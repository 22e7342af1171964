package drivers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSDriver_DirectoryHashing(t *testing.T) {
	tempDir := t.TempDir()

	driver, err := NewLocalFSDriver(tempDir, "/api/reports/")
	require.NoError(t, err)

	ctx := t.Context()
	key := "reports/abcdef123456.json"
	content := []byte(`{"overallStatus":"pass"}`)

	require.NoError(t, driver.Save(ctx, key, bytes.NewReader(content), "application/json"))

	// hashed from the file name, below the key's own directory
	fullPath := filepath.Join(tempDir, "reports", "ab", "cd", "abcdef123456.json")
	_, err = os.Stat(fullPath)
	require.NoError(t, err, "file not found at hashed path")

	reader, contentType, err := driver.Get(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, content, got)
	assert.Equal(t, "application/json", contentType)

	url, err := driver.GenerateURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "/api/reports/reports/abcdef123456.json", url)

	require.NoError(t, driver.Delete(ctx, key))
	_, err = os.Stat(fullPath)
	assert.True(t, os.IsNotExist(err), "file still exists after deletion")

	// deleting twice is not an error
	assert.NoError(t, driver.Delete(ctx, key))
}

func TestLocalFSDriver_GetMissing(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	require.NoError(t, err)

	_, _, err = driver.Get(t.Context(), "reports/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFSDriver_GetDirectoryIsNotFound(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	require.NoError(t, err)
	ctx := t.Context()

	require.NoError(t, driver.Save(ctx, "reports/3f2a9c.json", bytes.NewReader([]byte("{}")), "application/json"))

	// "reports/3f" resolves to the first hashed directory level
	_, _, err = driver.Get(ctx, "reports/3f")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = driver.Get(ctx, "reports")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFSDriver_ShortKeyAndNoPublicURL(t *testing.T) {
	tempDir := t.TempDir()
	driver, err := NewLocalFSDriver(tempDir, "")
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, driver.Save(ctx, "a.j", bytes.NewReader([]byte("x")), ""))

	_, err = os.Stat(filepath.Join(tempDir, "a.j"))
	assert.NoError(t, err)

	_, contentType, err := driver.Get(ctx, "a.j")
	require.NoError(t, err)
	assert.Equal(t, defaultContentType, contentType)

	url, err := driver.GenerateURL(ctx, "a.j", 0)
	require.NoError(t, err)
	assert.Equal(t, "a.j", url)
}

func TestLocalFSDriver_RejectsEscapingKeys(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	require.NoError(t, err)
	ctx := t.Context()

	for _, key := range []string{"", "../etc/passwd", "reports/../../x", "/abs/path", `reports\x.json`} {
		t.Run(key, func(t *testing.T) {
			err := driver.Save(ctx, key, bytes.NewReader(nil), "text/plain")
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, _, err = driver.Get(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}
