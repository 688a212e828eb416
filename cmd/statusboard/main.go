// Statusboard tracks machine heartbeats and answers each one with a message
// rendered from an MHPL template.
//
// MHPL templates mix plain text with calls into a fixed function table:
//
//	Alive Device: #alives() / #devices()
//	GPU load: #report(gpu-01)
//
// Usage:
//
//	# Render a template against the device registry
//	statusboard render 'Alive Device: #alives() / #devices()'
//
//	# Lint the template file
//	statusboard lint --file templates.yaml
//
//	# Register a device and send a heartbeat
//	statusboard devices register gpu-01
//	statusboard heartbeat gpu-01 --report "GPU 480"
//
//	# Serve the heartbeat API, probes and metrics
//	statusboard serve --config statusboard.yaml
package main

import "os"

func main() {
	os.Exit(Execute())
}
