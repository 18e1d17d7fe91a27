package ui

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput runs fn with stdout redirected and returns what it printed
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	fn()

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintErrorWithDetail(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	out := captureOutput(t, func() {
		PrintError("Login failed", "check your email address and password")
	})
	assert.Equal(t, "Login failed: check your email address and password\n", out)
}

func TestPrintErrorOmitsEmptyDetail(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	out := captureOutput(t, func() {
		PrintError("Email address is required", "")
	})
	assert.Equal(t, "Email address is required\n", out)

	out = captureOutput(t, func() {
		PrintError("Email address is required")
	})
	assert.Equal(t, "Email address is required\n", out)
}

func TestPrintWarningOmitsEmptyDetail(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	out := captureOutput(t, func() {
		PrintWarning("Interrupted", "")
	})
	assert.Equal(t, "Interrupted\n", out)
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	SetQuietMode(true)
	defer SetQuietMode(false)

	out := captureOutput(t, func() {
		PrintSuccess("All books downloaded")
		PrintInfo("Using stored credentials", "user@example.com")
		PrintWarning("Interrupted")
	})
	assert.Empty(t, out)

	// Errors still print in quiet mode
	SetNoColor(true)
	defer SetNoColor(false)
	out = captureOutput(t, func() {
		PrintError("Output path unusable")
	})
	assert.Equal(t, "Output path unusable\n", out)
}
