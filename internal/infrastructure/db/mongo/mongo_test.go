package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := Config{URI: "mongodb://localhost:27017", Database: "stem-bound", AppName: "stem-bound-api"}.clientOptions()

	require.Equal(t, defaultTimeout, *opts.ConnectTimeout)
	require.Equal(t, defaultTimeout, *opts.ServerSelectionTimeout)
	require.Equal(t, "stem-bound-api", *opts.AppName)

	opts = Config{URI: "mongodb://localhost:27017", Timeout: 2 * time.Second}.clientOptions()
	require.Equal(t, 2*time.Second, *opts.ConnectTimeout)
	require.Nil(t, opts.AppName)
}
