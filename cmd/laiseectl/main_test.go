package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEndpointRequiresURL(t *testing.T) {
	t.Setenv("GOOGLE_SCRIPT_URL", "")
	t.Setenv("NEXT_PUBLIC_GOOGLE_SCRIPT_URL", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cmd := newCheckEndpointCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestExportFlags(t *testing.T) {
	cmd := newExportCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--role", "giver", "-o", "x.xlsx"}))
	out, err := cmd.Flags().GetString("out")
	require.NoError(t, err)
	assert.Equal(t, "x.xlsx", out)
	role, err := cmd.Flags().GetString("role")
	require.NoError(t, err)
	assert.Equal(t, "giver", role)
}
