package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/zkpauth/internal/zkp"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.ServerEndpointAddr, "127.0.0.1:50051")
	assert.Equal(t, c.ParamSet, zkp.RFC5114Name)
	assert.Equal(t, c.RequestTimeout, 5*time.Second)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.ServerEndpointAddr, "127.0.0.1:50051")
	assert.Equal(t, c.ParamSet, zkp.RFC5114Name)
	assert.Equal(t, c.RequestTimeout, 5*time.Second)
}
