/*
 * surface.go, part of gothermo.
 *
 * Copyright 2026 Aaron Finney
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package thermoplot turns sampled or estimated distributions into
//two-dimensional density and free-energy surfaces and renders them as
//heat maps or contour maps with gonum/plot. It consumes the output of the
//thermo estimators (stationary probabilities or weights per sample) but
//knows nothing about the estimation itself.
package thermoplot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Grid is a surface z(x,y) on a rectilinear grid, in the meshgrid-style
//layout the plotters consume: x holds the column coordinates, y the row
//coordinates and z the values with z[ix,iy] belonging to (x[ix], y[iy]).
//It implements plotter.GridXYZ.
type Grid struct {
	x, y []float64
	z    *mat.Dense
}

//NewGrid builds a Grid after checking that the coordinate vectors match
//the value matrix.
func NewGrid(x, y []float64, z *mat.Dense) (*Grid, error) {
	r, c := z.Dims()
	if r != len(x) || c != len(y) {
		return nil, Error{message: fmt.Sprintf(
			"z is %dx%d but %d x-coordinates and %d y-coordinates were given",
			r, c, len(x), len(y)), deco: []string{"NewGrid"}}
	}
	return &Grid{x: x, y: y, z: z}, nil
}

//Dims returns the number of columns and rows.
func (g *Grid) Dims() (c, r int) { return len(g.x), len(g.y) }

//Z returns the surface value of cell (c,r).
func (g *Grid) Z(c, r int) float64 { return g.z.At(c, r) }

//X returns the coordinate of column c.
func (g *Grid) X(c int) float64 { return g.x[c] }

//Y returns the coordinate of row r.
func (g *Grid) Y(r int) float64 { return g.y[r] }

//MinMax returns the smallest and largest finite surface values.
func (g *Grid) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	r, c := g.z.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := g.z.At(i, j)
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

//Histogram2D bins the scattered samples (xall[i], yall[i]) on an
//nbins x nbins grid spanning their ranges and returns the counts at the
//bin centers. weights may be nil for unit weights; pass the estimated
//stationary probability of each sample's configurational state to turn
//biased samples into an unbiased surface. With avoidZeroCount, empty bins
//are lifted to the smallest occupied count so a subsequent free-energy
//transform stays finite.
func Histogram2D(xall, yall, weights []float64, nbins int, avoidZeroCount bool) (*Grid, error) {
	if len(xall) != len(yall) {
		return nil, Error{message: fmt.Sprintf(
			"%d x-samples but %d y-samples", len(xall), len(yall)), deco: []string{"Histogram2D"}}
	}
	if weights != nil && len(weights) != len(xall) {
		return nil, Error{message: fmt.Sprintf(
			"%d samples but %d weights", len(xall), len(weights)), deco: []string{"Histogram2D"}}
	}
	if len(xall) == 0 || nbins < 1 {
		return nil, Error{message: "nothing to histogram", deco: []string{"Histogram2D"}}
	}
	xmin, xmax := floats.Min(xall), floats.Max(xall)
	ymin, ymax := floats.Min(yall), floats.Max(yall)
	//degenerate ranges still get a well-formed one-cell-wide grid
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	dx := (xmax - xmin) / float64(nbins)
	dy := (ymax - ymin) / float64(nbins)
	x := make([]float64, nbins)
	y := make([]float64, nbins)
	for b := 0; b < nbins; b++ {
		x[b] = xmin + (float64(b)+0.5)*dx
		y[b] = ymin + (float64(b)+0.5)*dy
	}
	z := mat.NewDense(nbins, nbins, nil)
	for s := range xall {
		ix := int((xall[s] - xmin) / dx)
		iy := int((yall[s] - ymin) / dy)
		if ix >= nbins {
			ix = nbins - 1
		}
		if iy >= nbins {
			iy = nbins - 1
		}
		w := 1.0
		if weights != nil {
			w = weights[s]
		}
		z.Set(ix, iy, z.At(ix, iy)+w)
	}
	if avoidZeroCount {
		lift := math.Inf(1)
		for i := 0; i < nbins; i++ {
			for j := 0; j < nbins; j++ {
				if v := z.At(i, j); v > 0 && v < lift {
					lift = v
				}
			}
		}
		if !math.IsInf(lift, 1) {
			for i := 0; i < nbins; i++ {
				for j := 0; j < nbins; j++ {
					if z.At(i, j) < lift {
						z.Set(i, j, lift)
					}
				}
			}
		}
	}
	return &Grid{x: x, y: y, z: z}, nil
}

//ToDensity normalizes the surface values to sum to one, in place, and
//returns the grid.
func (g *Grid) ToDensity() *Grid {
	sum := 0.0
	r, c := g.z.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += g.z.At(i, j)
		}
	}
	if sum > 0 {
		g.z.Scale(1/sum, g.z)
	}
	return g
}

//ToFreeEnergy converts histogram counts or densities into free energies
//in kT, -log of the normalized values, in place. Empty cells become +Inf.
//With minenerZero the smallest free energy is shifted to zero.
func (g *Grid) ToFreeEnergy(minenerZero bool) *Grid {
	g.ToDensity()
	r, c := g.z.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := g.z.At(i, j); v > 0 {
				g.z.Set(i, j, -math.Log(v))
			} else {
				g.z.Set(i, j, math.Inf(1))
			}
		}
	}
	if minenerZero {
		min, _ := g.MinMax()
		if !math.IsInf(min, 0) {
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					if v := g.z.At(i, j); !math.IsInf(v, 1) {
						g.z.Set(i, j, v-min)
					}
				}
			}
		}
	}
	return g
}

//Errors

//Error is the structure for plotting and surface-preparation errors.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("gothermo thermoplot error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
