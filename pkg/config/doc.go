// Package config handles modman's own operational configuration: worker
// pool size and default log verbosity, plus an output color mode that is
// loaded but not consulted by any renderer.
// It does not configure mods or the profile; those are entirely described
// by modman.profile and the mod sources themselves.
package config
