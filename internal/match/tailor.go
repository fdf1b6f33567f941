package match

// ComputeSmartClip computes the exact sub-clip window inside
// [segmentStart, segmentEnd] for a target scene duration. A leading
// edge of skipEdgePercent of the clip is discarded to avoid
// footage-transition artifacts. Short scenes sit near the front of the
// usable footage while near-full-length scenes center, via an offset
// factor of half the duration ratio. The returned window never exceeds
// the candidate bounds and its length is min(sceneDuration, usable). A
// scene without a usable duration keeps the whole usable window rather
// than collapsing to a zero-length clip.
func ComputeSmartClip(segmentStart, segmentEnd, sceneDuration, skipEdgePercent float64) (float64, float64) {
	clipDuration := segmentEnd - segmentStart
	if clipDuration <= 0 {
		return segmentStart, segmentEnd
	}
	if skipEdgePercent < 0 {
		skipEdgePercent = 0
	}
	edgeSkip := clipDuration * skipEdgePercent
	usableStart := segmentStart + edgeSkip
	usable := clipDuration - edgeSkip

	if sceneDuration <= 0 || sceneDuration >= usable {
		return usableStart, segmentEnd
	}

	ratio := sceneDuration / usable
	offsetFactor := ratio * 0.5
	slack := usable - sceneDuration
	offset := slack * offsetFactor
	return usableStart + offset, usableStart + offset + sceneDuration
}
