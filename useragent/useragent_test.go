package useragent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString_Release(t *testing.T) {
	old := BuildMetadata
	BuildMetadata = ""
	defer func() { BuildMetadata = old }()

	assert.True(t, IsRelease())
	assert.Equal(t, "v1.0.0", VersionString())
}

func TestVersionString_NonRelease(t *testing.T) {
	old := BuildMetadata
	BuildMetadata = "abc1234"
	defer func() { BuildMetadata = old }()

	assert.False(t, IsRelease())
	assert.Equal(t, "v1.0.0+abc1234", VersionString())
}

func TestXGoogAPIClient(t *testing.T) {
	got := XGoogAPIClient()
	assert.True(t, strings.HasPrefix(got, "gl-go/"))
	assert.Contains(t, got, "gccl/v1.0.0")
}
