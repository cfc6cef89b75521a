// Package main hosts the earmark CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the content locator: indexing a
// reference transcript, comparing a query against it, inspecting the index,
// and configuration scaffolding. It centralizes configuration resolution
// and structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality in the internal packages
// first, then surface it through dedicated commands or flags here.
package main
