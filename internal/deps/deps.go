// Package deps reports the availability of external tools and model files
// the processing pipeline depends on.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"sublate/internal/config"
)

// Requirement defines an external dependency of the pipeline. Exactly one of
// Command or Path is set: Command is resolved on PATH, Path is checked as a
// regular file.
type Requirement struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Target      string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig lists the requirements implied by the configuration: the ffmpeg
// tools plus every configured recognition model. The translation endpoint is
// remote and not checked here.
func ForConfig(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "ffmpeg", Command: cfg.FFmpegBinary(), Description: "Audio extraction, slicing, and subtitle embedding"},
		{Name: "ffprobe", Command: cfg.FFprobeBinary(), Description: "Media inspection"},
	}

	models := []struct {
		name string
		path string
		desc string
	}{
		{"Recognizer encoder", cfg.Recognition.EncoderPath, "Transducer encoder model"},
		{"Recognizer decoder", cfg.Recognition.DecoderPath, "Transducer decoder model"},
		{"Recognizer joiner", cfg.Recognition.JoinerPath, "Transducer joiner model"},
		{"Recognizer tokens", cfg.Recognition.TokensPath, "Token vocabulary"},
		{"VAD model", cfg.Recognition.VADModelPath, "Silero voice activity model"},
	}
	for _, model := range models {
		reqs = append(reqs, Requirement{
			Name:        model.name,
			Path:        model.path,
			Description: model.desc,
		})
	}
	return reqs
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkOne(req))
	}
	return results
}

func checkOne(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}

	if command := strings.TrimSpace(req.Command); command != "" {
		status.Target = command
		resolved, err := exec.LookPath(command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			return status
		}
		status.Target = resolved
		status.Available = true
		return status
	}

	path := strings.TrimSpace(req.Path)
	status.Target = path
	if path == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(path)
	if err != nil {
		status.Detail = fmt.Sprintf("file %q not found", path)
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%q is a directory", path)
		return status
	}
	status.Available = true
	return status
}

// Missing filters statuses down to unavailable, non-optional dependencies.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
