/*
 * counts.go, part of gothermo.
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

package thermo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Counts holds the sufficient statistics the estimators consume: per
//thermodynamic state, the occupation count of every configurational state
//and, when built with a positive lag time, the lag-time transition counts.
//A Counts is built once from raw trajectories and read-only afterwards.
//Configurational states never visited keep their zero rows and columns, so
//every array stays shaped by the bias matrix.
type Counts struct {
	nTherm int
	nConf  int
	lag    int
	bias   *mat.Dense   //K x n reduced bias energies, known a priori
	occ    *mat.Dense   //K x n occupation counts
	tot    []float64    //per-thermodynamic-state total frame count
	trans  []*mat.Dense //per-thermodynamic-state n x n transition counts, nil without lag
}

//NewCounts aggregates occupation counts, and transition counts if lag > 0,
//over all trajectory pairs. The bias matrix fixes the dimensions K x n of
//the model; any state index observed beyond them is a BiasShapeError.
//Transition counting is sliding-window at the given lag, restricted to
//frames while in one thermodynamic state: each trajectory is split into
//maximal constant-t segments and a segment of length T contributes T-lag
//overlapping transition pairs to the count matrix of its thermodynamic
//state.
func NewCounts(ttrajs, dtrajs [][]int, bias *mat.Dense, lag int) (*Counts, error) {
	maxT, maxI, err := NormalizeTrajs(ttrajs, dtrajs)
	if err != nil {
		return nil, errDecorate(err, "NewCounts")
	}
	if bias == nil {
		return nil, BiasShapeError{message: "nil bias matrix", deco: []string{"NewCounts"}}
	}
	K, n := bias.Dims()
	if maxT > K {
		return nil, BiasShapeError{message: fmt.Sprintf(
			"observed thermodynamic state %d but the bias matrix only covers %d states",
			maxT-1, K), deco: []string{"NewCounts"}}
	}
	if maxI > n {
		return nil, BiasShapeError{message: fmt.Sprintf(
			"observed configurational state %d but the bias matrix only covers %d states",
			maxI-1, n), deco: []string{"NewCounts"}}
	}
	if lag < 0 {
		return nil, ShapeError{message: fmt.Sprintf("negative lag time %d", lag),
			deco: []string{"NewCounts"}}
	}
	c := &Counts{
		nTherm: K,
		nConf:  n,
		lag:    lag,
		bias:   bias,
		occ:    mat.NewDense(K, n, nil),
		tot:    make([]float64, K),
	}
	for w, ttraj := range ttrajs {
		dtraj := dtrajs[w]
		for f, t := range ttraj {
			c.occ.Set(t, dtraj[f], c.occ.At(t, dtraj[f])+1)
			c.tot[t]++
		}
	}
	if lag > 0 {
		c.trans = make([]*mat.Dense, K)
		for t := 0; t < K; t++ {
			c.trans[t] = mat.NewDense(n, n, nil)
		}
		for w, ttraj := range ttrajs {
			c.countSegments(ttraj, dtrajs[w])
		}
	}
	return c, nil
}

//countSegments adds the sliding-window transition counts of one trajectory,
//segment by segment.
func (c *Counts) countSegments(ttraj, dtraj []int) {
	start := 0
	for f := 1; f <= len(ttraj); f++ {
		if f == len(ttraj) || ttraj[f] != ttraj[start] {
			t := ttraj[start]
			for l := start; l+c.lag < f; l++ {
				i, j := dtraj[l], dtraj[l+c.lag]
				c.trans[t].Set(i, j, c.trans[t].At(i, j)+1)
			}
			start = f
		}
	}
}

//NTherm returns the number of thermodynamic states K.
func (c *Counts) NTherm() int { return c.nTherm }

//NConf returns the number of configurational states n.
func (c *Counts) NConf() int { return c.nConf }

//Lag returns the lag time used for transition counting, 0 if none.
func (c *Counts) Lag() int { return c.lag }

//Bias returns the reduced bias energy of configurational state i under
//thermodynamic state t.
func (c *Counts) Bias(t, i int) float64 { return c.bias.At(t, i) }

//Occ returns the occupation count N[t,i].
func (c *Counts) Occ(t, i int) float64 { return c.occ.At(t, i) }

//Tot returns the total frame count of thermodynamic state t.
func (c *Counts) Tot(t int) float64 { return c.tot[t] }

//ConfTotal returns the occupation count of configurational state i summed
//over all thermodynamic states.
func (c *Counts) ConfTotal(i int) float64 {
	s := 0.0
	for t := 0; t < c.nTherm; t++ {
		s += c.occ.At(t, i)
	}
	return s
}

//Trans returns the transition count C[t,i,j]. It panics if the Counts was
//built without a lag time; that is a caller defect, not a data condition.
func (c *Counts) Trans(t, i, j int) float64 {
	if c.trans == nil {
		panic("gothermo: transition counts requested from a Counts built without lag")
	}
	return c.trans[t].At(i, j)
}

//Connected reports whether configurational state i has any in- or outgoing
//transition evidence at any thermodynamic state. States without any are
//excluded from the kinetic part of a dTRAM model.
func (c *Counts) Connected(i int) bool {
	if c.trans == nil {
		return false
	}
	for t := 0; t < c.nTherm; t++ {
		for j := 0; j < c.nConf; j++ {
			if c.trans[t].At(i, j) > 0 || c.trans[t].At(j, i) > 0 {
				return true
			}
		}
	}
	return false
}

//errDecorate asserts that err implements Error and adds the caller's name
//to its decoration before handing it back.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
