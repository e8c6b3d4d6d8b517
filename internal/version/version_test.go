package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMinorVersion(t *testing.T) {
	assert.Equal(t, "1.2", GetMinorVersion("1.2.3"))
	assert.Equal(t, "0.0", GetMinorVersion("0.0.0-dev"))
	assert.Equal(t, "not-a-version", GetMinorVersion("not-a-version"))
}
