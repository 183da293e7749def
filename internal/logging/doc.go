// Package logging provides structured logging for the lbcs client and the
// wall simulator.
//
// It wraps a package-level zap logger. Logging is silent unless a level is
// given, either through Options or the LBCS_LOG_LEVEL environment variable,
// so CLI output stays clean by default:
//
//	if err := logging.Initialize(logging.Options{Level: "debug", File: "/tmp/lbcs.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The interactive client draws on stdout, so it should log to a file
// (Options.File or LBCS_LOG_FILE).
//
// Domain helpers keep field names consistent:
//
//	logging.LogGatewayCall("setLed", baseURL, elapsed, err)
//	logging.LogHTTPRequest(remoteAddr, "POST", "/led/4", 204, elapsed)
//	logging.LogWebSocketMessage(remoteAddr, "sent", websocket.TextMessage, payload)
//
// All functions are safe for concurrent use.
package logging
