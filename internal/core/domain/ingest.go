package domain

import (
	"fmt"
	"time"
)

// IngestStep names a stage of the ingestion pipeline.
type IngestStep string

// Ingestion pipeline steps.
const (
	StepChunk    IngestStep = "chunk"
	StepEmbed    IngestStep = "embed"
	StepIndex    IngestStep = "index"
	StepFinalize IngestStep = "finalize"
)

// StepError records which pipeline step failed.
type StepError struct {
	DocumentID string
	Step       IngestStep
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("ingest %s: %s step failed: %v", e.DocumentID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IngestReport summarises a successful ingestion run.
type IngestReport struct {
	DocumentID    string        `json:"documentId"`
	Stats         ChunkStats    `json:"stats"`
	PointsIndexed int           `json:"pointsIndexed"`
	TokensUsed    int           `json:"tokensUsed"`
	EstimatedCost float64       `json:"estimatedCost"`
	Model         string        `json:"model"`
	Duration      time.Duration `json:"duration"`
}
