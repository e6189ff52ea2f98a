/*
 * memm.go, part of gothermo.
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

//MEMM is a multi-ensemble Markov model, the immutable result of a WHAM or
//DTRAM call. It holds the unbiased stationary distribution over
//configurational states, one free energy per thermodynamic state, the
//stationary distribution reweighted to every thermodynamic state and, for
//dTRAM, a row-stochastic transition matrix per thermodynamic state,
//together with the iteration diagnostics. All accessors return copies, so
//a MEMM cannot be mutated after construction.
type MEMM struct {
	estimator  string
	nTherm     int
	nConf      int
	fTherm     []float64    //free energies, normalized so fTherm[0] = 0
	logPi      []float64    //unbiased stationary distribution, log-space
	piTherm    *mat.Dense   //K x n reweighted stationary distributions
	trans      []*mat.Dense //dTRAM only, nil otherwise
	estimated  []bool       //per configurational state
	converged  bool
	iterations int
	errHist    []float64
	lllHist    []float64
	dtTraj     string
}

//newMEMM freezes the outcome of an estimation run. logPi must be
//normalized; fTherm is shifted so the first thermodynamic state has zero
//free energy. The reweighted per-state distributions pi[t,i] proportional
//to pi[i]*exp(-b[t,i]) are computed here once.
func newMEMM(estimator string, c *Counts, fTherm, logPi []float64,
	trans []*mat.Dense, estimated []bool, converged bool, iterations int,
	errHist, lllHist []float64, dtTraj string) *MEMM {
	K, n := c.NTherm(), c.NConf()
	m := &MEMM{
		estimator:  estimator,
		nTherm:     K,
		nConf:      n,
		fTherm:     make([]float64, K),
		logPi:      make([]float64, n),
		piTherm:    mat.NewDense(K, n, nil),
		trans:      trans,
		estimated:  estimated,
		converged:  converged,
		iterations: iterations,
		errHist:    errHist,
		lllHist:    lllHist,
		dtTraj:     dtTraj,
	}
	shift := fTherm[0]
	for t, f := range fTherm {
		m.fTherm[t] = f - shift
	}
	copy(m.logPi, logPi)
	terms := make([]float64, 0, n)
	for t := 0; t < K; t++ {
		terms = terms[:0]
		for i := 0; i < n; i++ {
			terms = append(terms, logPi[i]-c.Bias(t, i))
		}
		//renormalize within this thermodynamic state
		logZ := lse.LogSumExp(append([]float64(nil), terms...))
		for i := 0; i < n; i++ {
			m.piTherm.Set(t, i, math.Exp(logPi[i]-c.Bias(t, i)-logZ))
		}
	}
	return m
}

//Estimator returns "wham" or "dtram".
func (m *MEMM) Estimator() string { return m.estimator }

//NTherm returns the number of thermodynamic states K.
func (m *MEMM) NTherm() int { return m.nTherm }

//NConf returns the number of configurational states n.
func (m *MEMM) NConf() int { return m.nConf }

//Converged reports whether the iteration reached the requested tolerance
//before the iteration cap.
func (m *MEMM) Converged() bool { return m.converged }

//Iterations returns the number of self-consistent iterations performed.
func (m *MEMM) Iterations() int { return m.iterations }

//DtTraj returns the physical-time-per-frame label the model was built with.
func (m *MEMM) DtTraj() string { return m.dtTraj }

//FreeEnergies returns the per-thermodynamic-state free energies, in kT,
//shifted so the first thermodynamic state is zero. Only differences
//between them carry physical meaning; the additive constant is arbitrary.
func (m *MEMM) FreeEnergies() []float64 {
	return append([]float64(nil), m.fTherm...)
}

//Pi returns the unbiased stationary distribution over configurational
//states at the reference thermodynamic state. Entries of states never
//sampled (WHAM) or without transition evidence (dTRAM) are zero.
func (m *MEMM) Pi() []float64 {
	pi := make([]float64, m.nConf)
	for i, lp := range m.logPi {
		pi[i] = math.Exp(lp)
	}
	return pi
}

//LogPi returns the unbiased stationary distribution in log-space, with
//-Inf marking masked states.
func (m *MEMM) LogPi() []float64 {
	return append([]float64(nil), m.logPi...)
}

//StationaryDistribution returns the stationary distribution reweighted to
//thermodynamic state t, that is pi[i]*exp(-b[t,i]) renormalized.
func (m *MEMM) StationaryDistribution(t int) []float64 {
	out := make([]float64, m.nConf)
	mat.Row(out, t, m.piTherm)
	return out
}

//TransitionMatrix returns the row-stochastic transition matrix at
//thermodynamic state t, or nil for a WHAM model. Rows of configurational
//states without transition evidence are identity rows; check Estimated to
//distinguish them from genuine self-transition probability.
func (m *MEMM) TransitionMatrix(t int) *mat.Dense {
	if m.trans == nil {
		return nil
	}
	return mat.DenseCopyOf(m.trans[t])
}

//Estimated reports whether configurational state i is covered by the
//kinetic part of the model. For WHAM models it reports whether the state
//was sampled at all.
func (m *MEMM) Estimated(i int) bool { return m.estimated[i] }

//ErrorHistory returns the recorded convergence increments, one every
//ErrOut iterations, or nil if recording was disabled.
func (m *MEMM) ErrorHistory() []float64 {
	return append([]float64(nil), m.errHist...)
}

//LogLikelihoodHistory returns the recorded log-likelihoods, one every
//LllOut iterations, or nil if recording was disabled.
func (m *MEMM) LogLikelihoodHistory() []float64 {
	return append([]float64(nil), m.lllHist...)
}
