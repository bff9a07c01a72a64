// Package services implements the driving port interfaces.
// Services contain the ingestion logic and orchestrate
// calls to driven ports (parsers, extractors, stores).
//
// Services are pure Go with no CGO.
package services
