// Package config loads sluice node configuration.
//
// Default() is the baseline; Load reads a JSON or YAML file over it and
// FromEnv overlays SLUICE_* variables:
//
//	cfg, err := config.Load("/etc/sluice/sluice.yaml")
//	if err != nil { /* handle */ }
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{DataDir: config.DefaultDataDir(), Config: cfg})
//	defer rt.Close()
package config
