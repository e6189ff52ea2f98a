/*
 * wham.go, part of gothermo.
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
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aaronrfinney/gothermo/lse"
)

//WHAM estimates a multi-ensemble model from occupation counts and bias
//energies alone, by alternating fixed-point substitution of the two WHAM
//self-consistency equations,
//
//	pi[i]  propto  sum_t N[t,i] / sum_t Ntot[t]*exp(f[t]-b[t,i])
//	f[t]   =       -log( sum_i pi[i]*exp(-b[t,i]) )
//
//until the largest change in f between iterations drops below Maxerr or
//Maxiter iterations are exhausted. ttrajs and dtrajs are paired lists of
//state sequences (wrap a single pair with SingleTraj); bias is the dense
//K x n reduced bias-energy matrix. In the non-converged case the
//best-effort model is still returned, together with a NotConvergedError.
//Configurational states never sampled at any thermodynamic state keep
//pi[i] = 0 and are masked out of every log-space sum.
func WHAM(ttrajs, dtrajs [][]int, bias *mat.Dense, o *Options) (*MEMM, error) {
	if o == nil {
		o = DefaultOptions()
	}
	c, err := NewCounts(ttrajs, dtrajs, bias, 0)
	if err != nil {
		return nil, errDecorate(err, "WHAM")
	}
	return whamCounts(c, o)
}

//whamIter is the mutable state of one WHAM run. It is owned by a single
//whamCounts call; nothing here outlives or is shared between runs.
type whamIter struct {
	c       *Counts
	f       []float64 //per-thermodynamic-state free energies
	fOld    []float64
	logPi   []float64 //log stationary weights, -Inf on unsampled states
	logNi   []float64 //log sum_t N[t,i], -Inf on unsampled states
	logNtot []float64 //log total frames per thermodynamic state
	acc     lse.Accumulator
}

func newWHAMIter(c *Counts) *whamIter {
	K, n := c.NTherm(), c.NConf()
	w := &whamIter{
		c:       c,
		f:       make([]float64, K),
		fOld:    make([]float64, K),
		logPi:   make([]float64, n),
		logNi:   make([]float64, n),
		logNtot: make([]float64, K),
	}
	for t := 0; t < K; t++ {
		w.logNtot[t] = safeLog(c.Tot(t))
	}
	for i := 0; i < n; i++ {
		w.logNi[i] = safeLog(c.ConfTotal(i))
		w.logPi[i] = math.Inf(-1)
	}
	return w
}

//updatePi recomputes the stationary weights from the current free energies
//and normalizes them to sum to one.
func (w *whamIter) updatePi() {
	K, n := w.c.NTherm(), w.c.NConf()
	for i := 0; i < n; i++ {
		if math.IsInf(w.logNi[i], -1) {
			w.logPi[i] = math.Inf(-1)
			continue
		}
		for t := 0; t < K; t++ {
			w.acc.Add(w.logNtot[t] + w.f[t] - w.c.Bias(t, i))
		}
		w.logPi[i] = w.logNi[i] - w.acc.Sum()
	}
	for _, lp := range w.logPi {
		w.acc.Add(lp)
	}
	logZ := w.acc.Sum()
	for i := range w.logPi {
		if !math.IsInf(w.logPi[i], -1) {
			w.logPi[i] -= logZ
		}
	}
}

//updateF recomputes the free energies from the current stationary weights
//and returns the largest absolute change with respect to the previous
//iteration.
func (w *whamIter) updateF() float64 {
	K, n := w.c.NTherm(), w.c.NConf()
	copy(w.fOld, w.f)
	err := 0.0
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			w.acc.Add(w.logPi[i] - w.c.Bias(t, i))
		}
		w.f[t] = -w.acc.Sum()
		if d := math.Abs(w.f[t] - w.fOld[t]); d > err {
			err = d
		}
	}
	return err
}

//logLikelihood returns the log-likelihood of the current parameters under
//the observed occupation counts, sum_{t,i} N[t,i]*(f[t]-b[t,i]+log pi[i]).
func (w *whamIter) logLikelihood() float64 {
	K, n := w.c.NTherm(), w.c.NConf()
	lll := 0.0
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			if nti := w.c.Occ(t, i); nti > 0 {
				lll += nti * (w.f[t] - w.c.Bias(t, i) + w.logPi[i])
			}
		}
	}
	return lll
}

//whamCounts runs the WHAM iteration on pre-aggregated statistics. DTRAM
//calls this directly for its warm start.
func whamCounts(c *Counts, o *Options) (*MEMM, error) {
	w := newWHAMIter(c)
	var errHist, lllHist []float64
	converged := false
	iter := 0
	increment := math.Inf(1)
	for iter = 1; iter <= o.Maxiter(); iter++ {
		w.updatePi()
		increment = w.updateF()
		if o.ErrOut() > 0 && iter%o.ErrOut() == 0 {
			errHist = append(errHist, increment)
		}
		if o.LllOut() > 0 && iter%o.LllOut() == 0 {
			lllHist = append(lllHist, w.logLikelihood())
		}
		if increment < o.Maxerr() {
			converged = true
			break
		}
	}
	if iter > o.Maxiter() {
		iter = o.Maxiter()
	}
	estimated := make([]bool, c.NConf())
	for i := range estimated {
		estimated[i] = c.ConfTotal(i) > 0
	}
	m := newMEMM("wham", c, w.f, w.logPi, nil, estimated, converged, iter,
		errHist, lllHist, o.DtTraj())
	if !converged {
		return m, NotConvergedError{Estimator: "wham", Iterations: iter,
			Err: increment, Maxerr: o.Maxerr()}
	}
	return m, nil
}

//safeLog returns log(x), mapping 0 to -Inf instead of letting a zero count
//turn into a NaN further downstream.
func safeLog(x float64) float64 {
	if x == 0 {
		return math.Inf(-1)
	}
	return math.Log(x)
}
