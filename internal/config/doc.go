// Package config provides the run configuration for cooccur.
//
// A Config starts from NewConfig defaults and is layered with the .cooccur
// YAML file (ApplyFile), the BLUEHEALTH_* environment variables (ApplyEnv)
// and finally CLI flags. The result is validated once and passed to every
// component; nothing reads process-wide state after that.
package config
