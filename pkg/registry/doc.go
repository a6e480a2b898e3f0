// Package registry lets independently written plugins find each other at
// runtime.
//
// A Registry maps capability keys to ordered provider lists. A key is either
// flat ("input") or namespaced ("output:rss"). Providers are appended in
// registration order and never listed twice for the same key. Namespaced
// lookups fall back to a fixed table of default providers when nothing was
// registered.
//
// The registry also owns the run's ConfigStore, a koanf-backed key/value
// store that plugins populate at registration time, notably with the
// command line flags they contribute (see ConfigOptions and ConfigUsage).
//
// One Registry is built per process run by the command line driver and
// passed explicitly to the dispatcher; tests build a fresh one per case.
package registry
