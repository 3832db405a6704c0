// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// tls-poke is a command-line tool that probes a TLS endpoint and checks the
// certificates it presents for expiry.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-poke/cmd/tls-poke@latest
//
// # Usage
//
//	tls-poke HOST [PORT] [FLAGS]
//	tls-poke inspect FILE [FLAGS]
//	tls-poke batch --config FILE [FLAGS]
//
// PORT defaults to 443. An unparsable PORT is reported and replaced by 443.
//
// # Flags
//
//	-c, --config            Configuration file (JSON or YAML), defaults to $TLS_POKE_CONFIG_FILE
//	-w, --warn-months       Expiration warning window in calendar months (default 3)
//	-t, --timeout           Per-probe timeout, 0 disables it (default 30s)
//	    --drain             Response drain mode: available or response
//	    --drain-window      Grace period for draining the handshake response
//	    --parallel          Run both probes concurrently
//	    --log-format        Log format: text or json
//	-j, --json              Print a JSON report
//	    --tree              Display certificate chain as ASCII tree diagram
//	    --table             Display certificate chain as markdown table
//	-o, --save-chain        Write the retrieved chain to a file
//	-d, --der               Save the chain in DER format
//
// # Exit Status
//
//	0    both probes succeeded
//	1    argument or configuration error
//	2    a probe failed
//	130  interrupted by a signal
//
// # Examples
//
// Probe a server on the default port:
//
//	tls-poke example.com
//
// Warn one month ahead and show the chain:
//
//	tls-poke example.com 8443 --warn-months 1 --tree
//
// Check a bundle before deploying it:
//
//	tls-poke inspect fullchain.pem --table
package main
