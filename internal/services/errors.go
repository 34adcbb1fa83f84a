package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMediaRead marks failures decoding or probing the source media.
	ErrMediaRead = errors.New("media read error")
	// ErrSegmentWrite marks failures writing an extracted media slice.
	ErrSegmentWrite = errors.New("segment write error")
	// ErrArtifactNotReady marks an externally produced file that never
	// materialized within the bounded polling budget.
	ErrArtifactNotReady = errors.New("artifact not ready")
	// ErrTimeout marks a whole-job wall-clock timeout.
	ErrTimeout = errors.New("timeout")
	// ErrEmbedding marks a failed or invalid subtitle embedding artifact.
	ErrEmbedding = errors.New("embedding error")
	// ErrProcessing marks unclassified failures from external collaborators.
	ErrProcessing = errors.New("processing error")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks invalid input data.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrProcessing
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
