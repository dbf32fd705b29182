package vm

import "github.com/btcsuite/btclog"

// log is a package-level logger, disabled by default.
var log btclog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all package logging.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger routes package logging through the given logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}
