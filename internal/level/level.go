// Package level maps cumulative experience to a level and progress toward
// the next one. The decomposition here mirrors the one the server uses to
// validate level-ups, so a displayed level never disagrees with the record
// the server would return for the same XP total.
package level

// BaseXP is the cost of the first level; level k costs BaseXP * k.
const BaseXP = 100

// Progress describes where a cumulative XP total lands on the curve.
type Progress struct {
	Level   int // current level, >= 1
	Current int // XP earned within the current level, < Next
	Next    int // XP needed to finish the current level
}

// Of decomposes a cumulative XP total into completed per-level blocks of
// strictly increasing size. Negative input is treated as zero.
func Of(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	remaining := totalXP
	needed := BaseXP * level

	for remaining >= needed {
		remaining -= needed
		level++
		needed = BaseXP * level
	}

	return Progress{Level: level, Current: remaining, Next: needed}
}

// Percent returns progress within the current level as 0..100.
func (p Progress) Percent() int {
	if p.Next <= 0 {
		return 0
	}
	pct := p.Current * 100 / p.Next
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
