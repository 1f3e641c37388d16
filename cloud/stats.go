package cloud

import (
	"github.com/arloliu/pointio/internal/pool"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the spatial extent and distribution of a cloud.
type Stats struct {
	Count   int
	Width   uint32
	Height  uint32
	IsDense bool

	Min      r3.Vector
	Max      r3.Vector
	Center   r3.Vector // midpoint of the bounding box
	Size     r3.Vector // bounding box extent per axis
	Centroid r3.Vector // mean position
	StdDev   r3.Vector // sample standard deviation per axis
}

// ComputeStats calculates Stats for c. Vectors are zero for an empty cloud,
// and StdDev is zero when c has a single point.
func ComputeStats(c *Cloud) Stats {
	s := Stats{
		Count:   c.Len(),
		Width:   c.Width,
		Height:  c.Height,
		IsDense: c.IsDense,
	}
	if s.Count == 0 {
		return s
	}

	axes := [3][]float64{}
	for i := range axes {
		buf, cleanup := pool.GetFloat64Slice(s.Count)
		defer cleanup()
		axes[i] = buf
	}
	for i, p := range c.Points {
		axes[0][i] = float64(p.X)
		axes[1][i] = float64(p.Y)
		axes[2][i] = float64(p.Z)
	}

	var lo, hi, mean, std [3]float64
	for i, xs := range axes {
		lo[i] = floats.Min(xs)
		hi[i] = floats.Max(xs)
		if s.Count > 1 {
			mean[i], std[i] = stat.MeanStdDev(xs, nil)
		} else {
			mean[i] = xs[0]
		}
	}

	s.Min = r3.Vector{X: lo[0], Y: lo[1], Z: lo[2]}
	s.Max = r3.Vector{X: hi[0], Y: hi[1], Z: hi[2]}
	s.Size = s.Max.Sub(s.Min)
	s.Center = s.Min.Add(s.Max).Mul(0.5)
	s.Centroid = r3.Vector{X: mean[0], Y: mean[1], Z: mean[2]}
	s.StdDev = r3.Vector{X: std[0], Y: std[1], Z: std[2]}

	return s
}
