package detector

import "github.com/btcsuite/btclog/v2"

// log is the subsystem logger for the detector package. It is disabled by
// default; callers wire up a real logger via UseLogger, matching the rest
// of this module's subsystems.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by the detector package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
