// Package flow is the macroscopic one-hour capacity and delay model.
//
// Each street at an intersection is evaluated by exactly one Model:
//
//   - Unsignalized: capacity = base × lanes × min(1, 2 km / length), with the
//     length floored at 0.1 km; delay = 2 s + demand/1000.
//   - Signalized: capacity = base × lanes × green ratio × cycle efficiency;
//     delay follows a piecewise approximation of Webster's formula driven by
//     saturation and red time, capped at MaxDelay.
//
// Street results are summed per intersection and graded A to F by average
// delay per vehicle. Zero demand and zero capacity yield zero ratios rather
// than errors, and a street referenced by an intersection but absent from the
// network is skipped.
package flow
