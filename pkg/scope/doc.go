// Package scope implements the numeric scope qualifiers attached to
// subscriptions and emissions.
//
// A scope is written as a comma separated list of integers or integer ranges:
//
//	"5"          a single point
//	"1-10"       a closed range
//	"10-1"       the same range, ends may be given in either order
//	"*-10"       unbounded below
//	"5-*"        unbounded above
//	"*"          everything
//	"1-5,8,20-*" several items
//
// Parse compiles such a string into a Set: intervals sorted by their lower
// bound, with overlapping or touching intervals merged. Set.Covers decides
// whether an emitted scope is accepted by a subscription's scope. Every emitted
// interval must fit entirely inside a single accepted interval; an emitted
// range that straddles a gap between two accepted intervals is rejected.
//
// Example usage:
//
//	accepted := scope.MustParse("1-10,10-20")
//	emitted, err := scope.Parse("15")
//	if err != nil {
//		return err
//	}
//	if accepted.Covers(emitted) {
//		deliver()
//	}
package scope
