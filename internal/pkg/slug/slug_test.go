package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	assert.Equal(t, "web-development", Make("Web Development"))
	assert.Equal(t, "go-and-rust", Make("  Go & Rust  "))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("laravel"))
	assert.False(t, Valid("Not A Slug"))
}
