package config

const (
	defaultInputDir           = "~/.local/share/sublate/input"
	defaultOutputDir          = "~/.local/share/sublate/output"
	defaultLogDir             = "~/.local/share/sublate/logs"
	defaultWorkDir            = "~/.local/share/sublate/work"
	defaultSweepInterval      = 60
	defaultJobTimeout         = 600
	defaultSegmentWorkers     = 4
	defaultPollAttempts       = 5
	defaultPollInterval       = 1
	defaultSampleRate         = 16000
	defaultNumThreads         = 2
	defaultTranslationModel   = "gpt-4o-mini"
	defaultTranslationTimeout = 120
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			WorkDir:   defaultWorkDir,
		},
		Workflow: Workflow{
			SweepInterval:  defaultSweepInterval,
			JobTimeout:     defaultJobTimeout,
			SegmentWorkers: defaultSegmentWorkers,
		},
		Embedding: Embedding{
			PollAttempts: defaultPollAttempts,
			PollInterval: defaultPollInterval,
		},
		Recognition: Recognition{
			SampleRate: defaultSampleRate,
			NumThreads: defaultNumThreads,
		},
		Translation: Translation{
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
