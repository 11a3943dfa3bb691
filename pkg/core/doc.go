// Package core defines the shared language of multiquery.
//
// This package contains:
//   - Targets and the dialect scheme table (Target, Dialect)
//   - The canonical value model emitted as JSON (Value, Row)
//   - The error taxonomy shared by adapters and the orchestrator
//   - Adapter connection configuration (AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib and the ordered map it
// builds rows on. All other packages depend on core, not the reverse.
package core
