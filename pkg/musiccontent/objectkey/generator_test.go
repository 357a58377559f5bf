package objectkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDPrefixGenerator(t *testing.T) {
	g := NewUUIDPrefixGenerator()

	key := g.GenerateKey("song.mp3")
	assert.True(t, strings.HasSuffix(key, "-song.mp3"))

	// Identical filenames never collide.
	other := g.GenerateKey("song.mp3")
	assert.NotEqual(t, key, other)
}

func TestUUIDPrefixGeneratorEmptyFilename(t *testing.T) {
	g := NewUUIDPrefixGenerator()

	key := g.GenerateKey("")
	assert.NotEmpty(t, key)
	assert.False(t, strings.HasSuffix(key, "-"))
}

func TestUUIDPrefixGeneratorSanitizesFilename(t *testing.T) {
	g := NewUUIDPrefixGenerator()

	tests := []struct {
		name       string
		fileName   string
		wantSuffix string
	}{
		{"spaces", "my song.mp3", "-my_song.mp3"},
		{"path separators", "a/b\\c.mp3", "-a_b_c.mp3"},
		{"url-hostile characters", "what?.mp3", "-what_.mp3"},
		{"surrounding whitespace", "  trimmed.mp3  ", "-trimmed.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := g.GenerateKey(tt.fileName)
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), "got %q", key)
		})
	}
}

func TestCustomFuncGenerator(t *testing.T) {
	g := NewCustomFuncGenerator(func(fileName string) string {
		return "custom/" + fileName
	})

	assert.Equal(t, "custom/a.mp3", g.GenerateKey("a.mp3"))
}
