package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedPhoto(t *testing.T) {
	assert.True(t, IsSupportedPhoto("a.jpg"))
	assert.True(t, IsSupportedPhoto("a.JPEG"))
	assert.True(t, IsSupportedPhoto("a.Png"))
	assert.False(t, IsSupportedPhoto("a.gif"))
	assert.False(t, IsSupportedPhoto("a.txt"))
	assert.False(t, IsSupportedPhoto("noext"))
}
