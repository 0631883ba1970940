package commands

import "github.com/btcsuite/btclog/v2"

// log is the subsystem logger for the CLI's own lifecycle messages
// (serve's startup/shutdown/signal handling), matching the
// UseLogger convention every other subsystem in this module follows.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
