package hand

import "math"

// Fingertip directions in image space (y grows downward), one per finger
// from index to pinky.
var fingerAngles = [4]float64{-75, -90, -105, -120}

var fingerJoints = [4][4]int{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	{RingMCP, RingPIP, RingDIP, RingTip},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// Pose builds a synthetic right hand whose palm center is exactly palm and
// whose four non-thumb fingertips all lie spread away from it. The thumb
// points sideways, well clear of the index tip.
func Pose(palm Point3D, spread float64) Hand {
	h := Hand{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: palm.X, Y: palm.Y + 0.08, Z: palm.Z}

	for f, joints := range fingerJoints {
		sin, cos := math.Sincos(fingerAngles[f] * math.Pi / 180)
		for j, idx := range joints {
			d := spread * float64(j+1) / float64(len(joints))
			h.Points[idx] = Point3D{X: palm.X + cos*d, Y: palm.Y + sin*d, Z: palm.Z}
		}
	}
	// The middle metacarpal anchors the palm center together with the wrist.
	h.Points[MiddleMCP] = Point3D{X: palm.X, Y: palm.Y - 0.08, Z: palm.Z}

	sin, cos := math.Sincos(-10 * math.Pi / 180)
	for j, idx := range []int{ThumbCMC, ThumbMCP, ThumbIP, ThumbTip} {
		d := 0.15 * float64(j+1) / 4
		h.Points[idx] = Point3D{X: palm.X + cos*d, Y: palm.Y + sin*d, Z: palm.Z}
	}

	return h
}

// FistLandmarks returns a closed hand, fingertips 0.10 from the palm center.
func FistLandmarks() Hand {
	return Pose(Point3D{X: 0.5, Y: 0.6}, 0.10)
}

// OpenPalmLandmarks returns a spread hand, fingertips 0.30 from the palm center.
func OpenPalmLandmarks() Hand {
	return Pose(Point3D{X: 0.5, Y: 0.6}, 0.30)
}

// RelaxedLandmarks returns a hand that is neither closed nor spread.
func RelaxedLandmarks() Hand {
	return Pose(Point3D{X: 0.5, Y: 0.6}, 0.19)
}

// PinchLandmarks returns a relaxed hand whose thumb tip touches the index tip
// at the given image position.
func PinchLandmarks(at Point3D) Hand {
	h := Pose(Point3D{X: at.X, Y: at.Y + 0.18, Z: at.Z}, 0.19)
	h.Points[IndexTip] = at
	h.Points[ThumbTip] = at
	return h
}
