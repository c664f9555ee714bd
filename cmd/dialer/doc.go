// Command dialer dials remote access connections on the configured devices.
//
// Every command runs inside its own container scope, so the connections a
// command dials are hung up when the command returns.
//
//	dialer devices
//	dialer dial modem0 office --hold 5s
//	dialer services
//
// Settings are read from DIALER_* environment variables and an optional .env
// file: DIALER_LOG_LEVEL, DIALER_DEVICES, DIALER_DIAL_TIMEOUT, DIALER_METRICS.
package main
