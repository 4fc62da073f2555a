package dircachededup

// This file holds the small entry points the command line uses to apply
// configuration-driven logging settings before a run.

// InitDebugFlags initialises debug flags - for CLI compatibility
func InitDebugFlags(flagsStr string) {
	if flagsStr != "" {
		SetDebugFlags(flagsStr)
	}
}

// ApplyLogging applies the verbose level and debug flags carried by a config
func ApplyLogging(cfg *Config) {
	if cfg == nil {
		return
	}
	SetVerboseLevel(cfg.Verbose)
	InitDebugFlags(cfg.Debug)
	if GetVerboseLevel() > 0 {
		VerboseLog(1, "Logging initialised (level %d, debug %q)", cfg.Verbose, cfg.Debug)
	}
}
