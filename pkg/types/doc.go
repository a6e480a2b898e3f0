// Package types defines the contracts shared by the registry, the input and
// output plugins, the dispatcher and the save engine: Job, Result variants,
// ActionSpec, Savable and the plugin function types.
package types
