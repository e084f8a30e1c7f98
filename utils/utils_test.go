package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/types"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"my report (v2).pdf", "my_report__v2_.pdf"},
		{"../../etc/passwd", "passwd"},
		{"tài liệu.pdf", "t_i_li_u.pdf"},
		{"", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestWriteScratchFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, cleanup, err := WriteScratchFile(dir, "../a b.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "a_b_"))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUserToken(t *testing.T) {
	user := &types.User{ID: "65f0c0ffee", Username: "alice"}

	token, err := GenerateUserToken("secret", time.Hour, user, "session-1")
	require.NoError(t, err)

	claims, err := ParseUserToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "session-1", claims.SessionID)

	_, err = ParseUserToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateUserToken("secret", -time.Minute, user, "session-1")
	require.NoError(t, err)
	_, err = ParseUserToken("secret", expired)
	assert.Error(t, err)

	_, err = GenerateUserToken("", time.Hour, user, "session-1")
	assert.Error(t, err)
}
