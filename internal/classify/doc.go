// Package classify maps execution errors to a category, severity, and
// fixability flag through rule-based pattern matching over the error text.
//
// The rule table is ordered: categories are evaluated top to bottom and the
// first match wins, so adding a category is additive rather than a rewrite
// of a conditional chain. Results are memoized by a content fingerprint in
// a bounded LRU cache with a time-to-live; entries are treated as immutable
// once written and simply expire.
package classify
