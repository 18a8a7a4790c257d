// Package enrich holds the place/airport enrichment hooks. Lookup services
// are out of scope, so every hook is a pass-through; the call sites exist so
// enrichment can land without touching the pipeline.
package enrich

import "itingen/internal/trip"

// Document enriches an entire trip document. Currently a no-op.
func Document(doc *trip.Document) *trip.Document {
	return doc
}

// Transportation enriches a single leg (airline names, operators, ...).
// Currently a no-op.
func Transportation(t trip.Transportation) trip.Transportation {
	return t
}
