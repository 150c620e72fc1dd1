package blocks

import (
	"math"

	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// Parameterize samples the per-group table from freshly drawn
// uniforms, then applies the sprawl remap when the group is not
// urban.
func Parameterize(g *model.WardGroup, r *rng.Rng) {
	n4a, n4b := r.N4(), r.N4()
	n3a, n3b, n3c, n3d, n3e := r.N3(), r.N3(), r.N3(), r.N3(), r.N3()

	p := model.AlleyParams{
		MinSq:       15 + 40*math.Abs(n4a-1),
		GridChaos:   0.2 + n3a*0.8,
		SizeChaos:   0.4 + n3b*0.6,
		ShapeFactor: 0.25 + n3c*2,
		Inset:       0.6 * (1 - math.Abs(n4b)),
		BlockSize:   4 + 10*n3d,
		Greenery:    n3e * n3e,
	}
	if g.Kind == model.WardPark {
		p.Greenery = n3e
	}
	p.MinFront = math.Sqrt(p.MinSq)

	if !g.Urban {
		p.GridChaos *= 0.5
		p.BlockSize *= 2
		p.Greenery = (1 + p.Greenery) / 2
	}

	g.Params = p
}
