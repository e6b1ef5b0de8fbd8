// Package scene assembles a packaged 3D asset onto a fixed stage:
// it loads the asset into a node arena, computes its world-space
// bounding box, seats it at the stage origin, attaches it under a
// read-only base scene and gives it a single-revolution turntable
// animation.
package scene

import (
	"errors"
	"fmt"
)

var errNoMeshes = errors.New("no mesh-bearing nodes")

// AssetLoadError reports a subject asset that could not be parsed or
// that contains nothing renderable.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load asset %s", e.Path)
	}
	return fmt.Sprintf("load asset %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// AnimationTargetError reports that the turntable animation could not
// be bound to a rotation target.
type AnimationTargetError struct {
	Reason string
}

func (e *AnimationTargetError) Error() string {
	return fmt.Sprintf("animation target: %s", e.Reason)
}

// BaseSceneError reports a stage file that is missing or unusable,
// most commonly one without a camera.
type BaseSceneError struct {
	Path string
	Err  error
}

func (e *BaseSceneError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("base scene %s", e.Path)
	}
	return fmt.Sprintf("base scene %s: %v", e.Path, e.Err)
}

func (e *BaseSceneError) Unwrap() error { return e.Err }
