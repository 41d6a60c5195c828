package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Name: comment.test
Redis:
  Addr: 127.0.0.1:6379
Kafka:
  Brokers: ["127.0.0.1:9092"]
`), 0644))

	cf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "comment.test", cf.Name)
	assert.Equal(t, "127.0.0.1:6379", cf.Redis.Addr)
	assert.Equal(t, []string{"127.0.0.1:9092"}, cf.Kafka.Brokers)
	assert.Equal(t, "comment", cf.Kafka.CommentTopic)
	assert.Equal(t, 3, cf.Thread.MaxDepth)
	assert.Equal(t, 5, cf.Thread.PageSize)
	assert.Equal(t, 64*1024*1024, cf.Thread.LocalCacheSize)
	assert.Equal(t, 5, cf.Thread.RootListTTL)
}

func TestLoadInvalidThread(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Thread:\n  PageSize: 0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRepoConfig(t *testing.T) {
	cf, err := Load("../../etc/comment.yaml")
	require.NoError(t, err)
	assert.Equal(t, "debug", cf.Log.Level)
	assert.True(t, cf.Mysql.AutoMigrate)
	assert.Equal(t, int64(1), cf.Snowflake.Node)
}
