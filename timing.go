package metasprite

// Keyframe binds a sprite index to a timeline position in seconds.
type Keyframe struct {
	Time   float64 // seconds from clip start
	Sprite int     // frame id within the group's sprite list
}

// SampleTimes converts a sequence of frame durations (milliseconds) into
// keyframe timestamps at the declared playback rate: one timestamp per frame
// at the cumulative time so far, plus a closing timestamp at
// total - 1/fps. The closing timestamp keeps the final frame visible for
// its whole duration instead of snapping away one frame-period early.
//
// A single-duration input still yields two timestamps (start and the
// rate-adjusted closing one) so the timeline is never zero-length.
func SampleTimes(durations []int, fps float64) []float64 {
	if len(durations) == 0 {
		return nil
	}
	times := make([]float64, 0, len(durations)+1)
	elapsed := 0
	for _, d := range durations {
		times = append(times, float64(elapsed)/1000.0)
		elapsed += d
	}
	times = append(times, float64(elapsed)/1000.0-1.0/fps)
	return times
}

// TagDuration returns the total duration of the tag's frames in seconds.
func TagDuration(durations []int) float64 {
	total := 0
	for _, d := range durations {
		total += d
	}
	return float64(total) / 1000.0
}

// KeyframesFor synthesizes the keyframe sequence for a frame tag: one
// keyframe per frame in [tag.From, tag.To] bound to that frame's sprite,
// plus the closing keyframe holding the last frame's sprite.
func KeyframesFor(tag FrameTag, doc *Document, fps float64) []Keyframe {
	durations := doc.TagDurations(tag)
	times := SampleTimes(durations, fps)
	if times == nil {
		return nil
	}
	keys := make([]Keyframe, len(times))
	for i := range times {
		sprite := tag.From + i
		if sprite > tag.To {
			sprite = tag.To // closing keyframe holds the last frame
		}
		keys[i] = Keyframe{Time: times[i], Sprite: sprite}
	}
	return keys
}
