package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for the given original filename.
	// Keys must be unique across calls even for identical filenames.
	GenerateKey(fileName string) string
}

// UUIDPrefixGenerator produces keys of the form "<uuid>-<filename>". The
// random prefix keeps colliding uploads from ever overwriting each other
// while the filename suffix keeps keys readable in store listings.
type UUIDPrefixGenerator struct{}

func NewUUIDPrefixGenerator() *UUIDPrefixGenerator {
	return &UUIDPrefixGenerator{}
}

func (g *UUIDPrefixGenerator) GenerateKey(fileName string) string {
	name := sanitizeFilename(fileName)
	if name == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%s", uuid.New(), name)
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(fileName string) string
}

func NewCustomFuncGenerator(fn func(fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(fileName string) string {
	return g.GenerateFunc(fileName)
}

func sanitizeFilename(filename string) string {
	// Replace characters that are awkward in keys and URLs
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(strings.TrimSpace(filename))
}
