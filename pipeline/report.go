package pipeline

import (
	"github.com/TwoX-In/GenAI-Hackathon/agent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Stage string

const (
	StageCreated             Stage = "created"
	StageClassified          Stage = "classified"
	StageAttributesConfirmed Stage = "attributes_confirmed"
	StageInventoryReady      Stage = "inventory_ready"
	StageContentGenerated    Stage = "content_generated"
	StageArtifactsDerived    Stage = "artifacts_derived"
	StageNarrationAttached   Stage = "narration_attached"
	StageFailed              Stage = "failed"
)

type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

var stageResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pipeline_stages_total",
	Help: "Pipeline stage results",
}, []string{"stage", "status"})

type StageOutcome struct {
	Stage  Stage  `json:"stage"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is returned for every run, also for aborted ones, with whatever was produced so far
type Report struct {
	UID               uint32            `json:"id"`
	State             Stage             `json:"state"` // Last stage reached, or failed
	Stages            []StageOutcome    `json:"stages"`
	Success           bool              `json:"success"`
	ContentGenerated  bool              `json:"content_generated"`
	NarrationAttached bool              `json:"narration_attached"`
	Artifacts         map[string]string `json:"artifacts,omitempty"`
	Message           string            `json:"message"`
	Content           *agent.Response   `json:"data,omitempty"`
	// Divergent is set when a write may not have reached remote storage. With
	// db.PublishOnRelease it is only final after the session is released
	Divergent bool `json:"divergent,omitempty"`
}

func newReport(uid uint32) *Report {
	return &Report{UID: uid, State: StageCreated, Stages: []StageOutcome{}}
}

func (r *Report) record(stage Stage, status Status, err error) {
	outcome := StageOutcome{Stage: stage, Status: status}
	if err != nil {
		outcome.Error = err.Error()
	}
	r.Stages = append(r.Stages, outcome)
	stageResults.WithLabelValues(string(stage), string(status)).Inc()
	if status == StatusFailed && stage != StageArtifactsDerived && stage != StageNarrationAttached {
		r.State = StageFailed
		return
	}
	r.State = stage
}

// Outcome returns the status recorded for stage, "" if it did not run
func (r *Report) Outcome(stage Stage) Status {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Status
		}
	}
	return ""
}
