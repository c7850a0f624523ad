package config

import (
	"flag"
	"strings"
)

// listFlag collects a flag given several times or as a comma separated list.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile       = flag.String("log", "", "Also write logs to this file")
	flagFormat        = flag.String("format", "", "Export format: glb or gltf")
	flagOutput        = flag.String("o", "", "Output directory for exports")
	flagKeepHashTable = flag.Bool("keep-hashtable", false, "Write hash tables unchanged on save")
	flagHashlist      listFlag
)

func init() {
	flag.Var(&flagHashlist, "hashlist", "Hashlist file (repeatable, comma separated)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the command and its arguments left after the flags.
func Args() []string {
	return flag.Args()
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
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	switch strings.ToLower(*flagFormat) {
	case "glb":
		cfg.Export.Binary = true
	case "gltf":
		cfg.Export.Binary = false
	}
	if *flagOutput != "" {
		cfg.Export.OutputDir = *flagOutput
	}
	if *flagKeepHashTable {
		cfg.Resave.RebuildHashTable = false
	}
	if len(flagHashlist) > 0 {
		cfg.Hashlist.Paths = append([]string(nil), flagHashlist...)
	}
}
