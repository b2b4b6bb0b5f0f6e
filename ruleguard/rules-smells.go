package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards with the same return are one guard.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	// Same shape inside loops.
	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested loops around SQL scans tend to hide N+1 queries.
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)

	// Errors that cross a package boundary should stay matchable.
	m.Match(`fmt.Errorf($fmt, $*args)`).
		Where(m["fmt"].Text.Matches(`".*%v"`) && !m["fmt"].Text.Matches(`".*%w"`)).
		Report(`formatting an error with %v discards the chain; prefer %w so callers can errors.Is/As`)
}
