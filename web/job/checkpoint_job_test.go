package job

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycr/usercenter/database"
)

func TestCheckpointJob(t *testing.T) {
	job := NewCheckpointJob()

	job.Run()
	assert.Equal(t, 1, job.failures)

	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "job.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	job.Run()
	assert.Equal(t, 0, job.failures)
}
