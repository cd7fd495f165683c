// Package config provides loading and environment overlay for qconsumer
// configuration. It exposes a Default() baseline that the consume command
// layers a JSON file, QCON_* environment variables and flags over.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/qconsumer.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
