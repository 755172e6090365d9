package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DefaultsOnly(t *testing.T) {
	m, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{".vfs", true},
		{".vfs/obj/ab/cdef", true},
		{".git", true},
		{".git/HEAD", true},
		{"config.yaml", true},
		{".env", true},
		{".DS_Store", true},
		{"sub/.DS_Store", true},
		{"Thumbs.db", true},

		{"main.go", false},
		{"docs/readme.md", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Matches(tt.path), "path: %s", tt.path)
	}
}

func TestMatcher_UserRulesMerged(t *testing.T) {
	dir := t.TempDir()
	rules := "*.log\ntemp/\n!important.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(rules), 0o644))

	m, err := NewMatcher(dir)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		// 用户规则
		{"app.log", true},
		{"logs/error.log", true},
		{"temp/file", true},
		// 负向规则豁免
		{"important.log", false},
		// 默认规则仍然生效
		{".vfs/refs/work/main", true},
		// 正常文件
		{"main.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Matches(tt.path), "path: %s", tt.path)
	}
}

func TestMatcher_FromRules(t *testing.T) {
	m := NewMatcherFromRules("*.bin")
	assert.True(t, m.Matches("data.bin"))
	assert.True(t, m.Matches(".env"))
	assert.False(t, m.Matches("data.txt"))
}
