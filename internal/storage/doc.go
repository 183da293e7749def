// Package storage persists named walls and problems on the local machine.
//
// Everything lives in one YAML document, library.yaml, next to the client
// settings:
//
//	version: 1
//	walls:
//	  - id: 5c1f...
//	    name: Garage board
//	    server_url: http://192.168.1.40:8888/
//	    image_uri: /home/me/walls/garage.jpg
//	problems:
//	  - id: 9e02...
//	    name: Crimp line
//	    rows: 12
//	    columns: 11
//	    grid:
//	      4: '#ff0000'
//	      15: '#00ff00'
//
// Identifiers are random UUIDs assigned on save. The reserved demo wall is
// never stored here.
package storage
