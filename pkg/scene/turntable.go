package scene

import (
	"math"

	"github.com/carmandale/previewBuilder/pkg/math3d"
)

// DefaultFrameCount is one full revolution at 30 fps over six seconds.
const DefaultFrameCount = 180

// Keyframe is one point on the subject root's vertical-axis rotation
// channel. Angle is in degrees.
type Keyframe struct {
	Frame int
	Angle float64
}

// AnimatedScene is a stage whose subject carries the turntable
// animation. Immutable once built; frames may be sampled from any
// goroutine.
type AnimatedScene struct {
	Stage      *Stage
	FrameCount int
	Keys       [2]Keyframe
}

// Animate gives the subject root a single-revolution rotation about
// the stage's vertical axis: exactly two keyframes, 0 degrees at frame
// 0 and 360 degrees at the final frame, interpolated linearly. The
// base scene is untouched.
func Animate(stage *Stage, frameCount int) (*AnimatedScene, error) {
	if stage == nil || stage.Root == nil {
		return nil, &AnimationTargetError{Reason: "no subject root to rotate"}
	}
	if frameCount < 2 {
		return nil, &AnimationTargetError{Reason: "frame count must leave room for both keyframes"}
	}

	return &AnimatedScene{
		Stage:      stage,
		FrameCount: frameCount,
		Keys: [2]Keyframe{
			{Frame: 0, Angle: 0},
			{Frame: frameCount - 1, Angle: 360},
		},
	}, nil
}

// AngleAt samples the rotation channel at a frame, in degrees. Frames
// are clamped to the animated range; the animation does not loop.
func (a *AnimatedScene) AngleAt(frame int) float64 {
	first, last := a.Keys[0], a.Keys[1]
	if frame <= first.Frame {
		return first.Angle
	}
	if frame >= last.Frame {
		return last.Angle
	}
	t := float64(frame-first.Frame) / float64(last.Frame-first.Frame)
	return first.Angle + t*(last.Angle-first.Angle)
}

// FrameTransform returns the subject's world transform at a frame: the
// sampled turntable rotation stacked on the corrective seat transform.
func (a *AnimatedScene) FrameTransform(frame int) math3d.Mat4 {
	angle := a.AngleAt(frame) * math.Pi / 180
	return math3d.RotateZ(angle).Mul(a.Stage.Root.Transform)
}
