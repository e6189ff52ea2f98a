/*
 * dtram.go, part of gothermo.
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
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aaronrfinney/gothermo/lse"
)

//DTRAM estimates a multi-ensemble model from occupation counts, lag-time
//transition counts and bias energies, extending WHAM with kinetic
//information. It solves the dTRAM self-consistent equations in their
//Lagrange-multiplier form: with biased stationary weights
//x[t,i] = exp(f[t]-b[t,i])*pi[i] and one multiplier nu[t,i] per
//thermodynamic and configurational state,
//
//	nu[t,i] <- sum_j (C[t,i,j]+C[t,j,i]) * nu[t,i]*x[t,j] / (nu[t,i]*x[t,j] + nu[t,j]*x[t,i])
//	pi[i]   <- sum_{t,j} (C[t,i,j]+C[t,j,i]) * x[t,i]*x[t,j] / (nu[t,i]*x[t,j] + nu[t,j]*x[t,i])
//	           / sum_t exp(f[t]-b[t,i])
//	f[t]    =  -log( sum_i pi[i]*exp(-b[t,i]) )
//
//all evaluated in log-space, iterated until neither f nor log pi changes
//by more than Maxerr between iterations. The converged multipliers yield one detailed-balance
//transition matrix per thermodynamic state,
//
//	P[t][i,j] = (C[t,i,j]+C[t,j,i]) * x[t,j] / (nu[t,i]*x[t,j] + nu[t,j]*x[t,i])
//
//with diagonal C[t,i,i]/nu[t,i] and rows renormalized. Configurational states
//without any in- or outgoing transition count at any thermodynamic state
//carry no kinetic evidence: they are dropped from the iteration, reported
//with identity rows and Estimated(i) == false, and logged as a warning.
//With Options.UseWHAM the iteration starts from a converged WHAM solution
//of the same counts, which often cuts the iteration count considerably but
//does not change the result. Like WHAM, hitting Maxiter is a soft failure:
//the model is returned together with a NotConvergedError.
func DTRAM(ttrajs, dtrajs [][]int, bias *mat.Dense, lag int, o *Options) (*MEMM, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if lag < 1 {
		return nil, ShapeError{message: fmt.Sprintf("lag time must be positive, got %d", lag),
			deco: []string{"DTRAM"}}
	}
	c, err := NewCounts(ttrajs, dtrajs, bias, lag)
	if err != nil {
		return nil, errDecorate(err, "DTRAM")
	}
	return dtramCounts(c, o)
}

//dtramIter is the mutable state of one dTRAM run, owned by a single
//dtramCounts call.
type dtramIter struct {
	c         *Counts
	connected []bool
	f         []float64 //per-thermodynamic-state free energies
	fOld      []float64
	logPi     []float64 //log stationary weights, -Inf on disconnected states
	logPiOld  []float64
	logNu     *mat.Dense //K x n log Lagrange multipliers
	logNuNew  *mat.Dense
	logX      *mat.Dense //K x n log biased stationary weights
	acc       lse.Accumulator
}

func newDTRAMIter(c *Counts) (*dtramIter, error) {
	K, n := c.NTherm(), c.NConf()
	d := &dtramIter{
		c:         c,
		connected: make([]bool, n),
		f:         make([]float64, K),
		fOld:      make([]float64, K),
		logPi:     make([]float64, n),
		logPiOld:  make([]float64, n),
		logNu:     mat.NewDense(K, n, nil),
		logNuNew:  mat.NewDense(K, n, nil),
		logX:      mat.NewDense(K, n, nil),
	}
	nConnected := 0
	for i := 0; i < n; i++ {
		d.connected[i] = c.Connected(i)
		if d.connected[i] {
			nConnected++
		}
	}
	if nConnected == 0 {
		return nil, ShapeError{message: fmt.Sprintf(
			"no transitions observed at lag %d; cannot estimate kinetics", c.Lag()),
			deco: []string{"DTRAM"}}
	}
	if nConnected < n {
		log.Printf("gothermo dtram: %d of %d configurational states have no transition evidence; "+
			"they are excluded from the kinetic model", n-nConnected, n)
	}
	//uniform start over the connected states
	for i := 0; i < n; i++ {
		if d.connected[i] {
			d.logPi[i] = -math.Log(float64(nConnected))
		} else {
			d.logPi[i] = math.Inf(-1)
		}
	}
	//nu[t,i] starts from half the symmetrized row count, the expected
	//multiplier magnitude at the fixed point
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			rc := 0.0
			for j := 0; j < n; j++ {
				rc += c.Trans(t, i, j) + c.Trans(t, j, i)
			}
			d.logNu.Set(t, i, safeLog(0.5*rc))
		}
	}
	d.updateF()
	return d, nil
}

//seedFromWHAM replaces the uniform starting point with a converged (or
//best-effort) WHAM solution on the same counts, restricted to the
//connected states and renormalized.
func (d *dtramIter) seedFromWHAM(o *Options) {
	wo := DefaultOptions()
	wo.Maxiter(o.Maxiter())
	wo.Maxerr(o.Maxerr())
	m, err := whamCounts(d.c, wo)
	if err != nil {
		//the warm start is best-effort; an unconverged seed is still a seed
		log.Printf("gothermo dtram: WHAM warm start did not converge: %v", err)
	}
	lp := m.LogPi()
	for i := range d.logPi {
		if d.connected[i] {
			d.logPi[i] = lp[i]
			d.acc.Add(lp[i])
		}
	}
	logZ := d.acc.Sum()
	for i := range d.logPi {
		if d.connected[i] && !math.IsInf(d.logPi[i], -1) {
			d.logPi[i] -= logZ
		}
	}
	d.updateF()
}

//updateX refreshes the log biased stationary weights from the current f
//and pi.
func (d *dtramIter) updateX() {
	K, n := d.c.NTherm(), d.c.NConf()
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			d.logX.Set(t, i, d.f[t]-d.c.Bias(t, i)+d.logPi[i])
		}
	}
}

//updateNu performs the Lagrange-multiplier fixed-point step.
func (d *dtramIter) updateNu() {
	K, n := d.c.NTherm(), d.c.NConf()
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j == i {
					if cii := d.c.Trans(t, i, i); cii > 0 {
						d.acc.Add(math.Log(cii))
					}
					continue
				}
				ck := d.c.Trans(t, i, j) + d.c.Trans(t, j, i)
				if ck == 0 {
					continue
				}
				a := d.logNu.At(t, i) + d.logX.At(t, j)
				b := d.logNu.At(t, j) + d.logX.At(t, i)
				d.acc.Add(math.Log(ck) + a - lse.LogSumExpPair(a, b))
			}
			d.logNuNew.Set(t, i, d.acc.Sum())
		}
	}
	d.logNu, d.logNuNew = d.logNuNew, d.logNu
}

//updatePi performs the stationary-weight fixed-point step, normalizes,
//and returns the largest absolute change of the log stationary weights.
//A thermodynamic state with no transition evidence for i contributes
//neither to the numerator nor to the reweighting denominator.
func (d *dtramIter) updatePi() float64 {
	K, n := d.c.NTherm(), d.c.NConf()
	copy(d.logPiOld, d.logPi)
	var denom lse.Accumulator
	for i := 0; i < n; i++ {
		if !d.connected[i] {
			d.logPi[i] = math.Inf(-1)
			continue
		}
		for t := 0; t < K; t++ {
			if cii := d.c.Trans(t, i, i); cii > 0 {
				d.acc.Add(math.Log(cii) + d.logX.At(t, i) - d.logNu.At(t, i))
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				ck := d.c.Trans(t, i, j) + d.c.Trans(t, j, i)
				if ck == 0 {
					continue
				}
				a := d.logNu.At(t, i) + d.logX.At(t, j)
				b := d.logNu.At(t, j) + d.logX.At(t, i)
				d.acc.Add(math.Log(ck) + d.logX.At(t, i) + d.logX.At(t, j) -
					lse.LogSumExpPair(a, b))
			}
			if !math.IsInf(d.logNu.At(t, i), -1) {
				denom.Add(d.f[t] - d.c.Bias(t, i))
			}
		}
		d.logPi[i] = d.acc.Sum() - denom.Sum()
	}
	for _, lp := range d.logPi {
		d.acc.Add(lp)
	}
	logZ := d.acc.Sum()
	err := 0.0
	for i := range d.logPi {
		if !math.IsInf(d.logPi[i], -1) {
			d.logPi[i] -= logZ
			if diff := math.Abs(d.logPi[i] - d.logPiOld[i]); diff > err {
				err = diff
			}
		}
	}
	return err
}

//updateF recomputes the free energies exactly as WHAM does, now from the
//dTRAM stationary weights, and returns the largest absolute change.
func (d *dtramIter) updateF() float64 {
	K, n := d.c.NTherm(), d.c.NConf()
	copy(d.fOld, d.f)
	err := 0.0
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			d.acc.Add(d.logPi[i] - d.c.Bias(t, i))
		}
		d.f[t] = -d.acc.Sum()
		if diff := math.Abs(d.f[t] - d.fOld[t]); diff > err {
			err = diff
		}
	}
	return err
}

//transitionMatrices freezes the current parameters into one row-stochastic
//transition matrix per thermodynamic state. Rows without transition
//evidence at that thermodynamic state become identity rows. The diagonal
//follows the same multiplier form as the off-diagonal entries,
//P[t][i,i] = C[t,i,i]/nu[t,i]; each row is renormalized, which is a no-op
//at the fixed point (the nu equation enforces unit row sums there) but
//keeps the invariant unconditionally on unconverged output.
func (d *dtramIter) transitionMatrices() []*mat.Dense {
	K, n := d.c.NTherm(), d.c.NConf()
	ps := make([]*mat.Dense, K)
	for t := 0; t < K; t++ {
		p := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			if math.IsInf(d.logNu.At(t, i), -1) {
				p.Set(i, i, 1)
				continue
			}
			sum := 0.0
			for j := 0; j < n; j++ {
				var pij float64
				if j == i {
					if cii := d.c.Trans(t, i, i); cii > 0 {
						pij = math.Exp(math.Log(cii) - d.logNu.At(t, i))
					}
				} else {
					ck := d.c.Trans(t, i, j) + d.c.Trans(t, j, i)
					if ck == 0 {
						continue
					}
					a := d.logNu.At(t, i) + d.logX.At(t, j)
					b := d.logNu.At(t, j) + d.logX.At(t, i)
					pij = math.Exp(math.Log(ck) + d.logX.At(t, j) - lse.LogSumExpPair(a, b))
				}
				p.Set(i, j, pij)
				sum += pij
			}
			if sum == 0 {
				//all entries underflowed; no meaningful row estimate
				p.Set(i, i, 1)
				continue
			}
			for j := 0; j < n; j++ {
				p.Set(i, j, p.At(i, j)/sum)
			}
		}
		ps[t] = p
	}
	return ps
}

//logLikelihood returns sum_{t,i,j} C[t,i,j]*log P[t][i,j] for the current
//parameters.
func (d *dtramIter) logLikelihood() float64 {
	K, n := d.c.NTherm(), d.c.NConf()
	ps := d.transitionMatrices()
	lll := 0.0
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if cij := d.c.Trans(t, i, j); cij > 0 {
					lll += cij * math.Log(ps[t].At(i, j))
				}
			}
		}
	}
	return lll
}

//dtramCounts runs the dTRAM iteration on pre-aggregated statistics.
func dtramCounts(c *Counts, o *Options) (*MEMM, error) {
	d, err := newDTRAMIter(c)
	if err != nil {
		return nil, err
	}
	if o.UseWHAM() {
		d.seedFromWHAM(o)
	}
	var errHist, lllHist []float64
	converged := false
	iter := 0
	increment := math.Inf(1)
	for iter = 1; iter <= o.Maxiter(); iter++ {
		d.updateX()
		d.updateNu()
		piErr := d.updatePi()
		increment = d.updateF()
		//with few thermodynamic states f can stabilize while pi still
		//moves; converge on the larger of the two increments
		if piErr > increment {
			increment = piErr
		}
		if o.ErrOut() > 0 && iter%o.ErrOut() == 0 {
			errHist = append(errHist, increment)
		}
		if o.LllOut() > 0 && iter%o.LllOut() == 0 {
			lllHist = append(lllHist, d.logLikelihood())
		}
		if increment < o.Maxerr() {
			converged = true
			break
		}
	}
	if iter > o.Maxiter() {
		iter = o.Maxiter()
	}
	d.updateX()
	m := newMEMM("dtram", c, d.f, d.logPi, d.transitionMatrices(),
		append([]bool(nil), d.connected...), converged, iter, errHist, lllHist,
		o.DtTraj())
	if !converged {
		return m, NotConvergedError{Estimator: "dtram", Iterations: iter,
			Err: increment, Maxerr: o.Maxerr()}
	}
	return m, nil
}
