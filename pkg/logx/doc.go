// Package logx configures structured logging for the alert tools.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Optional Telegram sink (min-level + rate limiting), fed by any sender
//     func so the alerter can forward its own error logs to the alert chat
package logx
