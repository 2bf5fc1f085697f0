package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 200))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "привет", Truncate("привет", 6))
	assert.Equal(t, "при…", Truncate("привет мир", 4))
	assert.Equal(t, "", Truncate("anything", 0))

	long := strings.Repeat("x", 250)
	assert.Equal(t, 200, len([]rune(Truncate(long, 200))))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret!")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("line one\nline two <script>alert(1)</script>"))
	assert.Contains(t, out, "<br")
	assert.NotContains(t, out, "<script>")

	img := string(RenderMarkdown("![pic](https://example.com/a.png)"))
	assert.Contains(t, img, `loading="lazy"`)
}
