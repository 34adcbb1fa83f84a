package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a subtitle job.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// EmbedMode controls how a generated subtitle track is attached to the video.
type EmbedMode string

const (
	EmbedNone EmbedMode = "none"
	EmbedSoft EmbedMode = "soft"
	EmbedHard EmbedMode = "hard"
)

// ParseEmbedMode converts a string into a known EmbedMode.
func ParseEmbedMode(value string) (EmbedMode, bool) {
	normalized := EmbedMode(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case EmbedNone, EmbedSoft, EmbedHard:
		return normalized, true
	case "":
		return EmbedNone, true
	default:
		return "", false
	}
}

// Job represents a subtitle job persisted in SQLite.
//
// FileName is relative to the configured input directory. SubtitlePath,
// ResultJSON, and ErrorMessage are written back by the scheduler once the
// pipeline finishes.
type Job struct {
	ID                int64
	FileName          string
	OriginLanguage    string
	TranslateLanguage string
	UseCorrection     bool
	EmbedSubtitle     EmbedMode
	SubtitlePath      string
	Status            Status
	ErrorMessage      string
	ResultJSON        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status is COMPLETED or FAILED. Terminal jobs
// are never picked up by a sweep again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
}
