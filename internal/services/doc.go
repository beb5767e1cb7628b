// Package services wires configuration, script discovery, the registry,
// handlers, the planner and the runner into setup runs.
package services
