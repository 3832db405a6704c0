// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package trust builds the per-connection TLS client configurations used by the probes.
//
// Two paths exist and are never interchangeable:
//   - Standard: platform (or supplied) roots with hostname verification, used for
//     the handshake probe.
//   - Inspection: built from the named AcceptAnyChain and AcceptAnyHostname
//     policies so the server's chain is handed back even when it is expired,
//     self-signed or issued for another name. It is only ever used to look at
//     certificates, never to decide whether to trust a peer.
//
// Every call returns a fresh [tls.Config]; nothing is installed process-wide.
package trust
