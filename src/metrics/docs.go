// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics exports probe results in the Prometheus text format.
//
// Results are collected into a private registry and written as a file for
// the node_exporter textfile collector, so scheduled batch runs can be
// scraped without tls-poke serving anything itself.
package metrics
