// Package sluicev1 defines the sluice.v1 gRPC API: the message types, the
// service descriptors and clients for HealthService and StreamsService.
// Messages travel as JSON under the "json" content-subtype, which this
// package registers with gRPC on import.
package sluicev1
