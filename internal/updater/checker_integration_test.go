package updater

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpdateCheckerWithMockServer drives the full check flow against a
// mock GitHub API: fetch, cache write, notification, cache hit.
func TestUpdateCheckerWithMockServer(t *testing.T) {
	t.Setenv("WASMGRAPH_NO_UPDATE_CHECK", "")
	t.Setenv("HOME", t.TempDir())

	mockVersion := "v2.0.0"
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		// Verify headers
		assert.Equal(t, "wasmgraph-cli", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		// Return mock release
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GitHubRelease{TagName: mockVersion}) //nolint:errcheck
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	checker := &Checker{
		currentVersion: "v1.0.0",
		cacheDir:       tmpDir,
		apiURL:         server.URL,
	}

	// Capture stderr to check for the notification
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	checker.CheckForUpdates()

	w.Close()
	os.Stderr = oldStderr

	var buf [1024]byte
	n, _ := r.Read(buf[:])
	output := string(buf[:n])

	assert.Equal(t, 1, requests, "One API call for the first check")
	assert.Contains(t, output, mockVersion)
	assert.Contains(t, output, "available")
	assert.Contains(t, output, "go install")
	assert.Contains(t, output, "💡")

	// Cache is created with correct data
	cacheFile := filepath.Join(tmpDir, "last_update_check")
	assert.FileExists(t, cacheFile)

	data, err := os.ReadFile(cacheFile)
	require.NoError(t, err)

	var cache CacheData
	err = json.Unmarshal(data, &cache)
	require.NoError(t, err)

	assert.Equal(t, mockVersion, cache.LatestVersion)
	assert.WithinDuration(t, time.Now(), cache.LastCheck, 2*time.Second)

	// A second check within the interval is served from cache
	checker.CheckForUpdates()
	assert.Equal(t, 1, requests, "Should not call the API again within 24 hours")
}

// TestUpdateCheckerUpToDate verifies no notification when current.
func TestUpdateCheckerUpToDate(t *testing.T) {
	t.Setenv("WASMGRAPH_NO_UPDATE_CHECK", "")
	t.Setenv("HOME", t.TempDir())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GitHubRelease{TagName: "v1.0.0"}) //nolint:errcheck
	}))
	defer server.Close()

	checker := &Checker{
		currentVersion: "v1.0.0",
		cacheDir:       t.TempDir(),
		apiURL:         server.URL,
	}

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	checker.CheckForUpdates()

	w.Close()
	os.Stderr = oldStderr

	var buf [1024]byte
	n, _ := r.Read(buf[:])
	assert.Empty(t, string(buf[:n]), "No notification when already current")
}

// TestUpdateCheckerWithOldCache tests that expired cache triggers new check
func TestUpdateCheckerWithOldCache(t *testing.T) {
	tmpDir := t.TempDir()

	checker := &Checker{
		currentVersion: "v1.0.0",
		cacheDir:       tmpDir,
	}

	// Create old cache (25 hours ago)
	oldCache := CacheData{
		LastCheck:     time.Now().Add(-25 * time.Hour),
		LatestVersion: "v1.5.0",
	}

	data, err := json.Marshal(oldCache)
	require.NoError(t, err)

	cacheFile := filepath.Join(tmpDir, "last_update_check")
	err = os.WriteFile(cacheFile, data, 0644)
	require.NoError(t, err)

	shouldCheck, err := checker.shouldCheck()
	require.NoError(t, err)
	assert.True(t, shouldCheck, "Should check when cache is older than 24 hours")
}

// TestUpdateCheckerNoUpdateNeeded tests when running latest version
func TestUpdateCheckerNoUpdateNeeded(t *testing.T) {
	checker := NewChecker("v2.0.0")

	needsUpdate, err := checker.NeedsUpdate("v2.0.0")
	require.NoError(t, err)
	assert.False(t, needsUpdate, "Should not need update when versions are equal")

	needsUpdate, err = checker.NeedsUpdate("v1.9.0")
	require.NoError(t, err)
	assert.False(t, needsUpdate, "Should not need update when current is newer")
}

// TestUpdateCheckerWithPrerelease tests prerelease version handling
func TestUpdateCheckerWithPrerelease(t *testing.T) {
	checker := NewChecker("v1.0.0-beta.1")

	needsUpdate, err := checker.NeedsUpdate("v1.0.0")
	require.NoError(t, err)
	assert.True(t, needsUpdate, "Should update from beta to stable")

	needsUpdate, err = checker.NeedsUpdate("v1.0.0-beta.2")
	require.NoError(t, err)
	assert.True(t, needsUpdate, "Should update from beta.1 to beta.2")
}

// TestUpdateCheckerErrorHandling tests various error scenarios
func TestUpdateCheckerErrorHandling(t *testing.T) {
	t.Run("invalid version strings", func(t *testing.T) {
		checker := NewChecker("v1.0.0")

		_, err := checker.compareVersions("invalid", "v1.0.0")
		assert.Error(t, err, "Should error on invalid current version")

		_, err = checker.compareVersions("v1.0.0", "invalid")
		assert.Error(t, err, "Should error on invalid latest version")
	})

	t.Run("dev version skips check", func(t *testing.T) {
		checker := NewChecker("dev")

		needsUpdate, err := checker.NeedsUpdate("v1.0.0")
		require.NoError(t, err)
		assert.False(t, needsUpdate, "Should skip check for dev version")
	})

	t.Run("empty version skips check", func(t *testing.T) {
		checker := NewChecker("")

		needsUpdate, err := checker.NeedsUpdate("v1.0.0")
		require.NoError(t, err)
		assert.False(t, needsUpdate, "Should skip check for empty version")
	})
}

// TestNotificationFormat tests the notification message format
func TestNotificationFormat(t *testing.T) {
	// Capture stderr
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	checker := NewChecker("v1.0.0")
	checker.displayNotification("v2.5.3")

	w.Close()
	var buf [1024]byte
	n, _ := r.Read(buf[:])
	output := string(buf[:n])
	os.Stderr = oldStderr

	assert.Contains(t, output, "v2.5.3", "Should contain version number")
	assert.Contains(t, output, "available", "Should mention availability")
	assert.Contains(t, output, "go install", "Should provide install command")
	assert.Contains(t, output, "github.com/dotandev/wasmgraph@latest", "Should provide full install path")
	assert.True(t, strings.HasPrefix(output, "\n"), "Should start with newline")
	assert.True(t, strings.HasSuffix(output, "\n\n"), "Should end with double newline")
}
