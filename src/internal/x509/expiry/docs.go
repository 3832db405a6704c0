// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package expiry evaluates certificates against their validity window and an
// expiration-warning window measured in calendar months.
//
// Each certificate gets a tagged [Outcome] rather than an error, and a chain is
// walked in order until the first certificate that is not [Valid].
package expiry
