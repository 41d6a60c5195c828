package leaf_go

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoreLocalSnowflake(t *testing.T) {
	core, err := NewCore(context.Background(), Config{
		Model:           Snowflake,
		SnowflakeConfig: &SnowflakeConfig{CreatorName: "comment.rpc", Node: 7},
	})
	require.NoError(t, err)
	id, ok := core.GetId()
	assert.True(t, ok)
	assert.NotZero(t, id)
}

func TestNewCoreErrors(t *testing.T) {
	_, err := NewCore(context.Background(), Config{Model: 99})
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = NewCore(context.Background(), Config{Model: Snowflake})
	assert.Error(t, err)
}
