package modem

import "log"

// Debug enables trace output from the decoder and synchronizer.
var Debug = false

func debugLog(format string, v ...any) {
	if Debug {
		log.Printf(format, v...)
	}
}
