// Package config provides configuration management for the mimeo CLI.
//
// # Configuration File
//
// The configuration file is config.yaml, searched for in the current
// directory and then in $XDG_CONFIG_HOME/mimeo (or the directory named by
// MIMEO_CONFIG_DIR). A missing file is not an error; defaults apply.
//
//	version: 1
//	rules_file: ~/backups/rules.yaml
//	log_dir: ~/.local/state/mimeo/logs
//	rule_spacing: 1s
//	hash_algorithm: sha256
//
// Every key can also be set through the environment with the MIMEO_ prefix,
// for example MIMEO_HASH_ALGORITHM=md5.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// [Load] validates the result; invalid files are reported with every
// problem at once and marked with errors.ErrInvalidConfig.
package config
