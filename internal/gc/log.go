package gc

import "github.com/btcsuite/btclog/v2"

// log is the subsystem logger for the GC core. It is disabled by default;
// callers wire up a real logger via UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by the gc package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
