package config

import "flag"

var (
	flagConfig         = flag.String("config", "", "Path to config file")
	flagDebug          = flag.Bool("debug", false, "Enable debug logging")
	flagScenario       = flag.String("scenario", "", "Path to a scripted AR session scenario")
	flagMetricsAddr    = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flagReferenceSpace = flag.String("reference-space", "", "Reference space for hit-testing")
	flagLogFile        = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScenario != "" {
		cfg.Sim.Scenario = *flagScenario
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *flagMetricsAddr
	}
	if *flagReferenceSpace != "" {
		cfg.Session.ReferenceSpace = *flagReferenceSpace
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
