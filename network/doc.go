// Package network holds the street model and the intersection index.
//
// FindIntersections compares every unordered pair of streets and every pair of
// their segments, so its cost is O(S² · L₁ · L₂). Networks handled here are
// small (tens of streets) and no spatial index is used.
//
// Intersection identifiers are derived from the sorted street pair only. Three
// streets crossing at one visual point therefore produce three independent
// pairwise intersections, and repeated crossings of the same pair share an ID.
package network
