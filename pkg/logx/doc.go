// Package logx configures dingnotify's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Optional journald sink for daemonized deployments
//   - Optional host sink forwarding high-signal lines to the orchestrator's
//     log endpoint (min-level + rate limiting, failures swallowed)
package logx
