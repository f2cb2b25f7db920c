// Package errs collects the sentinel error kinds raised across the engine.
// Components wrap one of these with fmt.Errorf's %w so callers can test
// the kind with errors.Is while keeping a human-readable message.
package errs

import "errors"

var (
	// ErrConfiguration marks a problem discovered before a run starts:
	// no data feed attached, a cyclic indicator dependency, or an
	// incompatible timeframe composition.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataOrdering marks a feed or aggregator that produced a bar
	// with a datetime strictly earlier than the last accepted one.
	ErrDataOrdering = errors.New("data ordering error")

	// ErrBrokerBug marks an internal broker invariant violation
	// (e.g. negative cash where the math should forbid it).
	ErrBrokerBug = errors.New("broker bug")

	// ErrIndicatorBug marks an internal indicator invariant violation.
	ErrIndicatorBug = errors.New("indicator bug")

	// ErrExternalIO marks a feed or writer I/O failure.
	ErrExternalIO = errors.New("external i/o error")
)
