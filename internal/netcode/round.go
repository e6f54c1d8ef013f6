// Package netcode implements the wire format between master and clients:
// compact JSON snapshots, paddle reports, sequencing and report throttling.
package netcode

import "math"

// ZeroSnap is the magnitude below which values are sent as 0.
const ZeroSnap = 1e-4

// Round3 rounds to 3 decimals and snaps near-zero values to exactly 0.
func Round3(v float64) float64 {
	if math.Abs(v) < ZeroSnap || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // drop the sign of -0
	}
	return r
}
