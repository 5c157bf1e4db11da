package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/config"
)

func TestEmbeddedConfigsAreValid(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		t.Run(env, func(t *testing.T) {
			data := ForEnvironment(env)
			require.NotEmpty(t, data)
			cfg, err := config.ParseAppConfig(data)
			require.NoError(t, err)
			require.NoError(t, config.ValidateAppConfig(cfg))
		})
	}
	assert.Nil(t, ForEnvironment("staging"))
}
