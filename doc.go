// Package microfolio maintains a small equities portfolio's state across
// daily runs.
//
// Each run fetches closing prices for a fixed symbol universe, applies the
// queued trading instructions and the configured stop-loss rules against
// the prior state, and produces a new state plus a dated valuation record
// with day-over-day changes.
//
// The package is organized around a single reconciliation engine:
//
//	engine, _ := microfolio.NewEngine(cfg)
//	result, _ := engine.Run(state, prices, queue, prior)
//
// State values are immutable: every operation returns a new State, so a
// run either persists a fully consistent new state or leaves the previous
// one untouched.
package microfolio
