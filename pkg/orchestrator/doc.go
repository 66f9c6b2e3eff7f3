// Package orchestrator wires the load → merge → transform → review → save
// pipeline behind a single entry point, with each stage injectable.
package orchestrator
