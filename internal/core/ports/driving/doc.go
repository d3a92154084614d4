// Package driving lists what the CLI, TUI and MCP server may ask of the core:
// ingest and query a corpus, and read or change settings.
package driving
