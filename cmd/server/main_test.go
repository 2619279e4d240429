package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, version+"\n", out.String())
}

func TestServeFlagsRegistered(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "addr", "log-level", "allowed-origin", "journal", "mdns"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}
