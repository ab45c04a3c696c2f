// Package raffle picks winners from a list of entrants.
//
// Selection is an unbiased Fisher-Yates shuffle of a copy of the input,
// truncated to the winner cap. The caller's slice is never modified.
package raffle
