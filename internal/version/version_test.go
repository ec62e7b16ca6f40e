package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(b, c string) { BuildNumber, GitCommit = b, c }(BuildNumber, GitCommit)

	BuildNumber, GitCommit = "7", "unknown"
	assert.Equal(t, "converty build 7", String())

	GitCommit = ""
	assert.Equal(t, "converty build 7", String())

	GitCommit = "abc123"
	assert.Equal(t, "converty build 7 (abc123)", String())
}
