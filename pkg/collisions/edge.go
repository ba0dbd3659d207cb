package collisions

import "github.com/cbodonnell/slide/pkg/kinematic"

// EntityID is an opaque handle threaded through collision results for the
// caller's bookkeeping. The physics core never resolves it.
type EntityID uint32

// Channel selects which edges may collide: a moving edge and a stationary
// edge only interact if their channels share a bit.
type Channel uint32

const (
	ChannelMain Channel = 1 << iota
	ChannelFloor

	ChannelNone Channel = 0
	ChannelAll          = ChannelMain | ChannelFloor
)

// Flag marks special roles of an edge's end points.
type Flag uint32

const (
	// FlagBumpStart allows an auto-nudge when an obstacle corner strikes
	// this edge close to its start.
	FlagBumpStart Flag = 1 << iota
	// FlagBumpEnd allows an auto-nudge when an obstacle corner strikes this
	// edge close to its end.
	FlagBumpEnd
	// FlagFloorStart treats contact at this edge's start vertex as standing.
	FlagFloorStart
	// FlagFloorEnd treats contact at this edge's end vertex as standing.
	FlagFloorEnd

	FlagNone Flag = 0
)

// Edge is a directed segment whose solid half-plane lies to the left of
// End - Start.
type Edge struct {
	Start    kinematic.Vector
	End      kinematic.Vector
	Channels Channel
	Flags    Flag
}

func NewEdge(start, end kinematic.Vector, channels Channel, flags Flag) Edge {
	return Edge{Start: start, End: end, Channels: channels, Flags: flags}
}

func (e Edge) Vector() kinematic.Vector {
	return e.End.Sub(e.Start)
}

// Add translates the edge by v.
func (e Edge) Add(v kinematic.Vector) Edge {
	e.Start = e.Start.Add(v)
	e.End = e.End.Add(v)
	return e
}

// SolidNormal returns the unit normal pointing into the solid side.
func (e Edge) SolidNormal() kinematic.Vector {
	return e.Vector().Left().Normalize()
}

// CanCollideWith reports whether the edges share a channel.
func (e Edge) CanCollideWith(other Edge) bool {
	return e.Channels&other.Channels != 0
}

func (e Edge) HasFlag(flag Flag) bool {
	return e.Flags&flag != 0
}
