// Package server implements a wall-controller simulator for development
// and demos.
//
// It keeps a rows x columns LED grid in memory and serves the same HTTP
// API a real controller exposes:
//
//	GET  /state        {"rows":12,"columns":11,"0":[0,0,0],...}
//	POST /state        {"4":[255,0,0]}   replace the grid
//	POST /led/{index}  [255,0,0]         set one LED
//	POST /clear                          turn everything off
//	GET  /ws                             websocket state feed
//
// Every mutation pushes the full snapshot to websocket subscribers, and a
// subscriber receives the current snapshot as soon as it connects.
// Invalid indices or colours get 400; unknown paths get 404.
//
// # Discovery
//
// With Config.Advertise set the server registers itself as "_lbcs._tcp"
// over mDNS so that `lbcs scan` can find it.
//
// # Usage
//
//	srv, err := server.New(&server.Config{Host: "0.0.0.0", Port: 8888, Rows: 12, Columns: 11})
//	if err != nil {
//	    return err
//	}
//	return srv.Start() // blocks until SIGINT/SIGTERM
//
// Tests can mount Handler on an httptest server instead.
package server
