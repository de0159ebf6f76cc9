package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalog/internal/core"
)

func TestParseRestockItems(t *testing.T) {
	items, err := parseRestockItems([]string{"p1=5", " p2 = -3 "})
	require.NoError(t, err)
	assert.Equal(t, []core.RestockItem{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: -3},
	}, items)

	empty, err := parseRestockItems(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	for _, bad := range []string{"p1", "=4", "p1=many"} {
		_, err := parseRestockItems([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"import", "preview", "export", "template", "adjust-prices", "restock", "migrate"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
