package actor

import "github.com/btcsuite/btclog/v2"

// log is the subsystem logger for the actor runtime. It is disabled by
// default; callers wire up a real logger via UseLogger, matching the rest of
// the module's subsystems.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by the actor package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
