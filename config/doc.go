// Package config loads application configuration from YAML, layering file
// values over compiled-in defaults. Secrets stay in the environment; the
// config only names the variables to read them from.
package config
