package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommandPrintsBuildInfo(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	})

	version = "0.4.0"
	commit = "9f1c2ab"
	date = "2026-10-01"

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, "advisor 0.4.0 (9f1c2ab, built 2026-10-01)\n", buf.String())
}

func TestVersionCommandDescribesAdvisor(t *testing.T) {
	cmd := newVersionCmd()
	require.Contains(t, cmd.Short, "advisor")
	require.Contains(t, cmd.Long, "advisor binary")
}
