// Package smoothing levels the daily production load of a weekly plan.
//
// The optimizer repeatedly moves a slice of one line's hours from a peak date
// (daily total above mean + 0.5 std) to a valley date (below mean - 0.5 std)
// on a different weekday. A move is kept only if both dates still satisfy the
// capacity, idle-line and personnel rules; otherwise it is reverted. The loop
// is greedy and bounded by a transfer budget, it does not search for a global
// optimum.
package smoothing
