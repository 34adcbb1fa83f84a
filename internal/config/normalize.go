package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeEmbedding()
	c.normalizeRecognition()
	c.normalizeTranslation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.SweepInterval <= 0 {
		c.Workflow.SweepInterval = defaultSweepInterval
	}
	if c.Workflow.JobTimeout <= 0 {
		c.Workflow.JobTimeout = defaultJobTimeout
	}
	if c.Workflow.SegmentWorkers <= 0 {
		c.Workflow.SegmentWorkers = defaultSegmentWorkers
	}
}

func (c *Config) normalizeEmbedding() {
	if c.Embedding.PollAttempts <= 0 {
		c.Embedding.PollAttempts = defaultPollAttempts
	}
	if c.Embedding.PollInterval <= 0 {
		c.Embedding.PollInterval = defaultPollInterval
	}
}

func (c *Config) normalizeRecognition() {
	if c.Recognition.SampleRate <= 0 {
		c.Recognition.SampleRate = defaultSampleRate
	}
	if c.Recognition.NumThreads <= 0 {
		c.Recognition.NumThreads = defaultNumThreads
	}
}

func (c *Config) normalizeTranslation() {
	if strings.TrimSpace(c.Translation.APIKey) == "" {
		c.Translation.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if strings.TrimSpace(c.Translation.Model) == "" {
		c.Translation.Model = defaultTranslationModel
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
