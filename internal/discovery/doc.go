// Package discovery finds wall-control servers on the local network over
// multicast DNS.
//
// Servers advertise the "_lbcs._tcp" service. TXT records carry the API
// path and the grid size:
//
//	path=/  rows=12  columns=11  version=v0.3.0
//
// Usage:
//
//	servers, err := discovery.Scan(ctx, 5*time.Second)
//	for _, s := range servers {
//	    fmt.Println(s.Instance, s.BaseURL())
//	}
//
// Discovery needs multicast on the interface and UDP 5353 open.
package discovery
