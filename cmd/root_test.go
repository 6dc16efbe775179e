package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["ask"])
	assert.True(t, names["serve"])
}

func TestAskCmd_RequiresQueryArg(t *testing.T) {
	err := askCmd.Args(askCmd, []string{})
	require.Error(t, err)

	err = askCmd.Args(askCmd, []string{"what", "is", "go"})
	assert.NoError(t, err)
}
