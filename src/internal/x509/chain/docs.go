// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain retrieves and presents [X.509] certificate chains.
// It provides capabilities to:
//   - Retrieve the chain a server presents over HTTPS using the inspection trust policy.
//   - Classify certificates by chain position (leaf, intermediate, root).
//   - Render a chain as an ASCII tree, a markdown table or JSON, annotated with
//     per-certificate evaluation labels.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
