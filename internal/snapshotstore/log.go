package snapshotstore

import "github.com/btcsuite/btclog/v2"

// log is the package-level subsystem logger. It is disabled until the
// caller wires in a real logger via UseLogger, matching the convention
// used throughout this module's packages.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-level logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
