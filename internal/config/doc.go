// Package config defines the daemon settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the schedule state file path, queue tuning, the
// wake-lock backend selection and the periodic task definitions.
package config
