// Package scheduler expands a validated Profile into an ordered list of
// motor segments and tracks a single profile's execution timing. Program
// and step sequencing across multiple profiles is the Controller's job
// (see the design's spin-off ownership note); a Scheduler only ever runs
// one profile at a time.
package scheduler

import (
	"errors"

	"isochron/config"
)

// Segment is one atomic (direction, duration, rpm) unit of motor motion.
// Direction changes only ever happen between segments.
type Segment struct {
	Direction config.Direction // Clockwise or CounterClockwise only
	DurationS uint32
	RPM       uint16
}

// ErrZeroIterations and ErrIndivisibleSegments mirror the rejections
// config.ValidateProfile already performs; GenerateSegments re-checks them
// so it stays correct even if called on a profile nobody validated.
var (
	ErrZeroIterations      = errors.New("scheduler: alternate direction requires iterations >= 1")
	ErrIndivisibleSegments = errors.New("scheduler: duration does not divide evenly into segments of at least MinSegmentTimeS")
)

// GenerateSegments expands a profile's (rpm, duration, direction,
// iterations) into its derived segment list. It is pure and idempotent:
// calling it twice on the same profile yields identical segments.
func GenerateSegments(p config.Profile) ([]Segment, error) {
	switch p.Direction {
	case config.Clockwise, config.CounterClockwise:
		return []Segment{{Direction: p.Direction, DurationS: p.DurationS, RPM: p.RPM}}, nil

	case config.Alternate:
		if p.Iterations == 0 {
			return nil, ErrZeroIterations
		}
		numSegments := uint32(p.Iterations) * 2
		segDur := p.DurationS / numSegments
		if p.DurationS%numSegments != 0 || segDur < config.MinSegmentTimeS {
			return nil, ErrIndivisibleSegments
		}

		segments := make([]Segment, 0, numSegments)
		dir := config.Clockwise
		for i := uint32(0); i < numSegments; i++ {
			segments = append(segments, Segment{Direction: dir, DurationS: segDur, RPM: p.RPM})
			if dir == config.Clockwise {
				dir = config.CounterClockwise
			} else {
				dir = config.Clockwise
			}
		}
		return segments, nil

	default:
		return nil, errors.New("scheduler: unknown direction mode")
	}
}
