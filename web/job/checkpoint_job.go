// Package job holds the cron jobs run by the web server.
package job

import (
	"github.com/ycr/usercenter/database"
	"github.com/ycr/usercenter/logger"
)

// CheckpointJob folds the SQLite write-ahead log into the database file.
type CheckpointJob struct {
	failures int
}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		j.failures++
		logger.Warningf("WAL checkpoint failed (%d in a row): %v", j.failures, err)
		return
	}
	j.failures = 0
	logger.Debug("WAL checkpoint done")
}
