package config

const (
	defaultSourceRoot      = "~/photosort/incoming"
	defaultDestinationRoot = "~/photosort/sorted"
	defaultDataDir         = "~/.local/share/photosort"
	defaultLogDir          = "~/.local/share/photosort/logs"
	defaultHashWorkers     = 4
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultProcedure       = "rhinoplasty"
	defaultImageType       = "pre_op"
	defaultAngle           = "front"
	defaultConsentStatus   = "no_consent"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceRoot:      defaultSourceRoot,
			DestinationRoot: defaultDestinationRoot,
			DataDir:         defaultDataDir,
			LogDir:          defaultLogDir,
		},
		Sorting: Sorting{
			HashWorkers: defaultHashWorkers,
		},
		Defaults: Defaults{
			Procedure:     defaultProcedure,
			ImageType:     defaultImageType,
			Angle:         defaultAngle,
			ConsentStatus: defaultConsentStatus,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
