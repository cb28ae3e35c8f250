// Package jobs implements background maintenance for Menagerie.
//
// # Job Types
//
//   - BattleLogRetentionProcessor: trims each battle's log to its newest
//     entries on a fixed interval
//
// # Lifecycle
//
// Processors own a goroutine driven by a ticker:
//
//	p := jobs.NewBattleLogRetentionProcessor(battleLogs, cfg.BattleLog.Keep, cfg.BattleLog.PruneInterval)
//	p.Start()
//	defer p.Stop()
//
// RunOnce performs a single pass synchronously for manual triggers and
// tests.
//
// # Error Handling
//
// Jobs log errors but don't crash the application. A failed pass is retried
// on the next tick.
package jobs
