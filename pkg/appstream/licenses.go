package appstream

import "strings"

// metadataLicenseIDs is the vetted set of permissive licenses allowed for
// metainfo metadata, so catalogs can be mixed and redistributed without a
// license review.
var metadataLicenseIDs = map[string]bool{
	"FSFAP":        true,
	"MIT":          true,
	"0BSD":         true,
	"CC0-1.0":      true,
	"CC-BY-3.0":    true,
	"CC-BY-4.0":    true,
	"CC-BY-SA-3.0": true,
	"CC-BY-SA-4.0": true,
	"GFDL-1.1":     true,
	"GFDL-1.2":     true,
	"GFDL-1.3":     true,
	"BSL-1.0":      true,
	"FTL":          true,
	"FSFUL":        true,
}

// IsMetadataLicense checks a simple SPDX expression against the vetted
// metadata license set. With OR semantics one valid license suffices, with
// AND semantics all of them must be valid. Parenthesized expressions and
// license exceptions are rejected outright.
func IsMetadataLicense(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	if strings.ContainsAny(expr, "()") {
		return false
	}

	requiresAll := true
	goodCnt, badCnt := 0, 0

	for _, tok := range strings.Fields(expr) {
		switch strings.ToUpper(tok) {
		case "AND", "&":
			requiresAll = true
			continue
		case "OR", "|":
			requiresAll = false
			continue
		case "WITH", "^":
			// a license exception means no clean content license
			badCnt++
			continue
		}
		tok = strings.TrimSuffix(tok, "+")
		if metadataLicenseIDs[tok] {
			goodCnt++
		} else {
			badCnt++
		}
	}

	if !requiresAll {
		return goodCnt > 0
	}
	return badCnt == 0 && goodCnt > 0
}
