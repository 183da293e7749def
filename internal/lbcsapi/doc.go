// Package lbcsapi is the HTTP client for a wall-control server.
//
// Endpoints, relative to the server base URL:
//
//	GET  state        -> {"rows":R,"columns":C,"<index>":[r,g,b],...}
//	POST state        <- {"<index>":[r,g,b],...}   replace the whole grid
//	POST led/<index>  <- [r,g,b]                   set one LED
//	POST clear                                     turn every LED off
//	GET  ws           websocket; the server pushes the state document
//	                  after every change
//
// Calls are never retried. Failures are returned as *APIError, whose Type
// separates transport problems from HTTP and decoding errors.
package lbcsapi
