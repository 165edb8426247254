// Package orchestrator implements the phased sync workflow that keeps the
// relational store consistent with the football data provider.
//
// A run moves through a fixed sequence of phases: the competition list is
// synced first, then newly tracked competitions are bootstrapped (standings
// before teams, so a season record exists before anything depends on it),
// then matches are synced for every tracked competition, and finally
// standings and team rosters are refreshed for the competitions whose match
// results demand it.
//
// All provider and database I/O happens inside activities. The workflow
// itself only sequences them, batching competition-scoped activities to stay
// inside the provider's request budget, and records every activity result in
// a RunStore keyed by (run, phase, competition) so an interrupted run can be
// resumed without repeating completed work.
package orchestrator
