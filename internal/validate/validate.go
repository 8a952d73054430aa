// Package validate performs static safety checks on candidate expressions
// before they reach the executor. It is a fixed, ordered denylist of
// textual patterns over the raw expression, intentionally conservative: a
// benign expression containing a blocked substring is rejected too. That
// false-positive bias is a documented property, not a defect. The denylist
// is defense in depth over the restricted execution environment, not a
// security boundary on its own.
package validate

import (
	"fmt"
	"regexp"
)

// Verdict is the terminal classification of a candidate expression.
type Verdict struct {
	Accepted bool
	// Reason names the first pattern that matched when rejected.
	Reason string
}

// allowedModules are the only names an expression may reference as loaded
// modules; everything it needs is predeclared under these three names.
var allowedModules = map[string]bool{
	"df":   true,
	"tab":  true,
	"time": true,
}

var (
	loadRe    = regexp.MustCompile(`(?i)load\s*\(\s*"([^"]*)"`)
	loadAnyRe = regexp.MustCompile(`(?i)\bload\s*\(`)
)

// pattern is one denylist check.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// denylist is checked in order; the first match short-circuits. Patterns
// cover file access, dynamic evaluation, introspection, process and system
// invocation, and binary serialization.
var denylist = []pattern{
	{"file open", regexp.MustCompile(`(?i)\bopen\s*\(`)},
	{"dynamic exec", regexp.MustCompile(`(?i)\bexec\s*\(`)},
	{"dynamic eval", regexp.MustCompile(`(?i)\beval\s*\(`)},
	{"dynamic import", regexp.MustCompile(`(?i)__import__`)},
	{"attribute introspection", regexp.MustCompile(`(?i)\b(getattr|setattr|delattr|hasattr)\b`)},
	{"scope introspection", regexp.MustCompile(`(?i)\b(globals|locals|vars)\s*\(`)},
	{"directory listing", regexp.MustCompile(`(?i)\bdir\s*\(`)},
	{"system invocation", regexp.MustCompile(`(?i)\.system\b`)},
	{"os access", regexp.MustCompile(`(?i)\bos\.`)},
	{"subprocess", regexp.MustCompile(`(?i)\bsubprocess\b`)},
	{"filesystem utilities", regexp.MustCompile(`(?i)\bshutil\b`)},
	{"binary serialization", regexp.MustCompile(`(?i)\b(pickle|marshal)\b`)},
}

// Check scans an expression against the denylist. The first matching
// pattern yields Rejected with that pattern's name as the reason; no match
// yields Accepted.
func Check(expr string) Verdict {
	for _, m := range loadRe.FindAllStringSubmatch(expr, -1) {
		if !allowedModules[m[1]] {
			return Verdict{Reason: fmt.Sprintf("load of disallowed module %q", m[1])}
		}
	}
	// A load whose module is not a quoted literal cannot be checked
	// against the allow-list, so it is rejected outright.
	if len(loadAnyRe.FindAllString(expr, -1)) > len(loadRe.FindAllStringSubmatch(expr, -1)) {
		return Verdict{Reason: "load with non-literal module"}
	}

	for _, p := range denylist {
		if p.re.MatchString(expr) {
			return Verdict{Reason: p.name}
		}
	}

	return Verdict{Accepted: true}
}
