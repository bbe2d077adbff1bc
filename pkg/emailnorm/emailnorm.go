// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// Package emailnorm canonicalizes email addresses before storage and lookup.
//
// # Usage
//
// Email uniqueness per principal class is enforced against the normalized
// form, so "Ada@Example.COM " and "ada@example.com" resolve to the same
// account. Normalization happens at the service boundary — stored values are
// always canonical.
package emailnorm

import (
	"strings"

	"golang.org/x/text/cases"
)

// folder performs full Unicode case folding, which handles characters whose
// lowercase mapping is locale-independent but not covered by ASCII ToLower.
var folder = cases.Fold()

// Canonical returns the normalized form of an email address: surrounding
// whitespace removed and the whole address case-folded.
func Canonical(email string) string {
	return folder.String(strings.TrimSpace(email))
}
