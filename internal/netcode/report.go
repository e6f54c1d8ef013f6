package netcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// ErrMalformedReport is returned for paddle reports missing required fields.
var ErrMalformedReport = errors.New("netcode: malformed paddle report")

// XZ is a planar vector encoded as an object.
type XZ struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// XZOf rounds a vector onto the wire.
func XZOf(v core.Vec3) XZ {
	return XZ{X: Round3(v.X), Z: Round3(v.Z)}
}

// Vec returns the planar vector.
func (v XZ) Vec() core.Vec3 {
	return core.Planar(v.X, v.Z)
}

// PaddleReport is a client's self-reported paddle state.
type PaddleReport struct {
	Pos   XZ   `json:"pos"`
	Vel   XZ   `json:"vel"`
	Serve bool `json:"serve,omitempty"`
}

// NewPaddleReport rounds a paddle state into a report.
func NewPaddleReport(pos, vel core.Vec3, serve bool) PaddleReport {
	return PaddleReport{Pos: XZOf(pos), Vel: XZOf(vel), Serve: serve}
}

// differs reports whether position or velocity moved more than eps.
func (r PaddleReport) differs(o PaddleReport, eps float64) bool {
	return math.Abs(r.Pos.X-o.Pos.X) > eps || math.Abs(r.Pos.Z-o.Pos.Z) > eps ||
		math.Abs(r.Vel.X-o.Vel.X) > eps || math.Abs(r.Vel.Z-o.Vel.Z) > eps
}

// EncodeReport serializes a report.
func EncodeReport(r PaddleReport) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("netcode: encode report: %w", err)
	}
	return data, nil
}

type wireXZ struct {
	X *float64 `json:"x"`
	Z *float64 `json:"z"`
}

type wireReport struct {
	Pos   *wireXZ `json:"pos"`
	Vel   *wireXZ `json:"vel"`
	Serve *bool   `json:"serve"`
}

// DecodeReport parses a report. Missing pos, vel or any of their components
// yield ErrMalformedReport.
func DecodeReport(data []byte) (PaddleReport, error) {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return PaddleReport{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	pos, ok := w.Pos.value()
	if !ok {
		return PaddleReport{}, fmt.Errorf("%w: missing pos", ErrMalformedReport)
	}
	vel, ok := w.Vel.value()
	if !ok {
		return PaddleReport{}, fmt.Errorf("%w: missing vel", ErrMalformedReport)
	}
	r := PaddleReport{Pos: pos, Vel: vel}
	if w.Serve != nil {
		r.Serve = *w.Serve
	}
	return r, nil
}

func (w *wireXZ) value() (XZ, bool) {
	if w == nil || w.X == nil || w.Z == nil {
		return XZ{}, false
	}
	return XZ{X: *w.X, Z: *w.Z}, true
}
