package featuring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDerivedSizes(t *testing.T) {
	c, err := NewFeaturingConfig(36, 84, 16)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(49, c.NbPitches())
	assert.Equal(50, c.NbFeatures())
	assert.Equal(48, c.SentinelPitch())
}

func TestConfigValidation(t *testing.T) {
	_, err := NewFeaturingConfig(36, 47, 4)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewFeaturingConfig(36, 48, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewFeaturingConfig(36, 48, 1)
	assert.NoError(t, err)
}
