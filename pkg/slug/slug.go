// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug normalizes human-entered names into stable lookup keys.
//
// # Usage
//
// Role codes are slugs of the role name (e.g., "Content Editor" becomes
// "content-editor"), and usernames are compared in their folded form so that
// visually identical names collide.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

/*
From converts a name into an ASCII slug.

Accents are stripped after NFD decomposition, letters are lowercased, and every
run of other characters becomes a single hyphen. Leading and trailing hyphens
are dropped, so a name with no ASCII letters or digits yields "".
*/
func From(name string) string {
	stripped, _, _ := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), name)

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			builder.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return builder.String()
}

// Fold returns the comparison form of an identifier: NFKC-normalized,
// case-folded and trimmed. Unlike [From] it keeps non-ASCII letters.
//
//	Fold(" Ｊｏｈｎ ") // "john"
func Fold(identifier string) string {
	normalized := norm.NFKC.String(strings.TrimSpace(identifier))
	// a Caser is stateful and must not be shared between goroutines
	return cases.Fold().String(normalized)
}
