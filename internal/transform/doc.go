// Package transform defines the client side of inference-time
// preprocessing. A Client applies a fitted pipeline to single records,
// either in-process or against a remote `pitchflow serve` over gRPC.
package transform
