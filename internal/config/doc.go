// Package config provides configuration structures and utilities for
// projectreport. It defines the output, format and history options of a
// report run and the optional YAML configuration file that supplies
// defaults and per-project overrides.
package config
