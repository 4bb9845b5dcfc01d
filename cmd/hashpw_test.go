package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCmd_ReadsStdin(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("first\nsecond\n"))
	rootCmd.SetArgs([]string{"hash-password", "--cost", "4"})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[0]), []byte("first")))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[1]), []byte("second")))
}
