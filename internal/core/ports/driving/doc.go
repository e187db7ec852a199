// Package driving provides interfaces for external actors (primary/inbound
// ports): the CLI, the TUI and the MCP server drive the core through these.
package driving
