package ports

import (
	"gotimbre/domain/core"
	"gotimbre/domain/target"
)

// AffinityPort returns how well a method suits a descriptor, nominally in
// [0.5, 1.5] with 1.0 neutral.
type AffinityPort interface {
	Affinity(method core.MethodID, d target.Descriptor) float64
}
