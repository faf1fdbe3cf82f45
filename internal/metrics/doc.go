// Package metrics registers sluice's Prometheus collectors on the default
// registry and exposes them through Handler.
package metrics
