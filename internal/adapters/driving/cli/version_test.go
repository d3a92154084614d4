package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsVersionAndRuntime(t *testing.T) {
	original := version
	SetVersion("1.2.0")
	t.Cleanup(func() { version = original })

	out, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "sercha-rag version 1.2.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, "version", "extra")

	assert.Error(t, err)
}
