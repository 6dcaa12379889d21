package handlers

import (
	"context"

	"github.com/TwoX-In/GenAI-Hackathon/agent"
	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/pipeline"
	"github.com/TwoX-In/GenAI-Hackathon/transcribe"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/TwoX-In/GenAI-Hackathon/video"
)

type Runner interface {
	Run(ctx context.Context, session *db.Session, req pipeline.Request) (*pipeline.Report, error)
}

type ArtifactRegenerator interface {
	DeriveOne(ctx context.Context, session *db.Session, uid uint32, kind models.ArtifactKind) (int, error)
}

type Narrator interface {
	Attach(ctx context.Context, session *db.Session, uid uint32) (video.Outcome, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, uri string) (*transcribe.Transcript, error)
}

// AudioStore keeps uploaded recordings while they are transcribed
type AudioStore interface {
	agent.Uploader
	DeleteRemoteFile(ctx context.Context, path string) error
}

// Handlers holds the services the HTTP surface calls into. Transcriber may be nil
type Handlers struct {
	Pipeline    Runner
	Artifacts   ArtifactRegenerator
	Narrator    Narrator
	Transcriber Transcriber
	Audio       AudioStore
	Pool        *utils.Pool
}
