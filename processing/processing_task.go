package processing

import (
	"github.com/TwoX-In/GenAI-Hackathon/models"
)

// Statuses are stored in ArtifactTasks, values must not change
const (
	Skipped       = 0
	Done          = 2
	Failed        = 3
	FailedStorage = 4
)

// StatusName is used for metrics and API responses
func StatusName(status int) string {
	switch status {
	case Skipped:
		return "skipped"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case FailedStorage:
		return "failed_storage"
	}
	return "unknown"
}

type processingTask interface {
	getName() models.ArtifactKind
	mimeType() string
	shouldHandle(*Inputs) bool
	// render returns the encoded artifact
	render(*Inputs, *fonts) ([]byte, error)
}

var (
	tasks = map[models.ArtifactKind]processingTask{}
)

func registerTask(t processingTask) {
	tasks[t.getName()] = t
}

func init() {
	registerTask(&banner{})
	registerTask(&thumbnail{})
	registerTask(&comic{})
}
