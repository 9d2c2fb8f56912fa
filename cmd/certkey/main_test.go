package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootArgs = rootFlags{}
	openArgs = openFlags{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return strings.TrimSpace(buf.String()), err
}

func TestGenerate(t *testing.T) {
	out, err := executeCommand(t, "generate")
	require.NoError(t, err)
	assert.Len(t, out, 64)
}

func TestSealAndOpen(t *testing.T) {
	envelope, err := executeCommand(t, "seal", "--key", testKey, "p12-password")
	require.NoError(t, err)
	assert.Contains(t, envelope, `"nonce"`)

	out, err := executeCommand(t, "open", "--key", testKey, envelope)
	require.NoError(t, err)
	assert.Equal(t, "ok (12 bytes)", out)

	out, err = executeCommand(t, "open", "--key", testKey, "--reveal", envelope)
	require.NoError(t, err)
	assert.Equal(t, "p12-password", out)
}

func TestOpenWithWrongKey(t *testing.T) {
	envelope, err := executeCommand(t, "seal", "--key", testKey, "p12-password")
	require.NoError(t, err)

	wrong := strings.Repeat("ff", 32)
	_, err = executeCommand(t, "open", "--key", wrong, envelope)
	assert.Error(t, err)
}

func TestMissingKey(t *testing.T) {
	t.Setenv(masterKeyEnv, "")
	_, err := executeCommand(t, "seal", "secret")
	assert.ErrorContains(t, err, "master key is required")

	_, err = executeCommand(t, "seal", "--key", "zz", "secret")
	assert.ErrorContains(t, err, "not valid hex")
}
