package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "embed-resolver/"), ua)
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, GitCommit)
	assert.Contains(t, ua, Version)
}
