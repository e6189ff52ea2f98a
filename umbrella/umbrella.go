/*
 * umbrella.go, part of gothermo.
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

//Package umbrella derives multi-ensemble estimator input from raw
//one-dimensional simulation data: thermodynamic-state labels and reduced
//bias energies for umbrella-sampling runs (optionally mixed with unbiased
//molecular dynamics) and for simulations at several temperatures. It is
//the collaborator in front of the thermo estimators; nothing here touches
//the self-consistent iterations themselves.
package umbrella

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aaronrfinney/gothermo"
	"github.com/aaronrfinney/gothermo/lse"
)

//Params labels the thermodynamic states of a prepared umbrella-sampling
//dataset: one center and one reduced force constant per state. An unbiased
//state, if present, has force constant 0.
type Params struct {
	Centers        []float64
	ForceConstants []float64
}

//SamplingData wraps umbrella-sampling trajectories, or a mix of
//umbrella-sampling and unbiased molecular-dynamics trajectories, into the
//form the estimators take. usTrajs are the restrained-coordinate time
//series, one per umbrella; centers are the umbrella positions and
//forceConstants the harmonic constants, either one per umbrella or a
//single shared value. Umbrellas with identical center and force constant
//are folded into one thermodynamic state; all mdTrajs share one unbiased
//state. If kT > 0 the force constants are taken in physical energy units
//and reduced by kT; otherwise they must already be unit-less.
//
//Returned are the per-frame thermodynamic-state labels, the per-frame
//reduced bias energies towards every thermodynamic state (one T_i x K
//matrix per trajectory, with the harmonic bias 0.5*k*(x-y)^2), and the
//state labels.
func SamplingData(usTrajs [][]float64, centers, forceConstants []float64,
	mdTrajs [][]float64, kT float64) (ttrajs [][]int, btrajs []*mat.Dense, p *Params, err error) {
	if len(usTrajs) == 0 {
		return nil, nil, nil, Error{message: "no umbrella trajectories given", deco: []string{"SamplingData"}}
	}
	if len(centers) != len(usTrajs) {
		return nil, nil, nil, Error{message: fmt.Sprintf(
			"%d umbrella trajectories but %d centers", len(usTrajs), len(centers)),
			deco: []string{"SamplingData"}}
	}
	fcs := forceConstants
	if len(fcs) == 1 {
		fcs = make([]float64, len(usTrajs))
		for w := range fcs {
			fcs[w] = forceConstants[0]
		}
	}
	if len(fcs) != len(usTrajs) {
		return nil, nil, nil, Error{message: fmt.Sprintf(
			"%d umbrella trajectories but %d force constants", len(usTrajs), len(forceConstants)),
			deco: []string{"SamplingData"}}
	}
	if kT > 0 {
		reduced := make([]float64, len(fcs))
		for w, k := range fcs {
			reduced[w] = k / kT
		}
		fcs = reduced
	}
	//fold identical umbrellas into one thermodynamic state
	p = &Params{}
	states := make([]int, len(usTrajs))
	for w := range usTrajs {
		idx := -1
		for s := range p.Centers {
			if p.Centers[s] == centers[w] && p.ForceConstants[s] == fcs[w] {
				idx = s
				break
			}
		}
		if idx < 0 {
			idx = len(p.Centers)
			p.Centers = append(p.Centers, centers[w])
			p.ForceConstants = append(p.ForceConstants, fcs[w])
		}
		states[w] = idx
	}
	unbiased := -1
	if len(mdTrajs) > 0 {
		unbiased = len(p.Centers)
		p.Centers = append(p.Centers, 0)
		p.ForceConstants = append(p.ForceConstants, 0)
	}
	K := len(p.Centers)
	all := append(append([][]float64{}, usTrajs...), mdTrajs...)
	ttrajs = make([][]int, len(all))
	btrajs = make([]*mat.Dense, len(all))
	for w, xs := range all {
		state := unbiased
		if w < len(usTrajs) {
			state = states[w]
		}
		ttraj := make([]int, len(xs))
		b := mat.NewDense(maxInt(len(xs), 1), K, nil)
		for f, x := range xs {
			ttraj[f] = state
			for s := 0; s < K; s++ {
				dx := x - p.Centers[s]
				b.Set(f, s, 0.5*p.ForceConstants[s]*dx*dx)
			}
		}
		ttrajs[w] = ttraj
		btrajs[w] = b
	}
	return ttrajs, btrajs, p, nil
}

//MultitemperatureBias converts potential-energy trajectories sampled at
//several temperatures into reduced bias-energy sequences with respect to
//the first temperature as the reference:
//
//	b_I(x) = U(x) * (1/kT_I - 1/kT_0)
//
//utrajs are the potential energies, in the same physical units as the kT
//values, and ttrajs the generating thermodynamic states indexing kTs.
func MultitemperatureBias(utrajs [][]float64, ttrajs [][]int, kTs []float64) ([]*mat.Dense, error) {
	if len(utrajs) != len(ttrajs) {
		return nil, Error{message: fmt.Sprintf(
			"%d energy trajectories but %d state trajectories", len(utrajs), len(ttrajs)),
			deco: []string{"MultitemperatureBias"}}
	}
	if len(kTs) == 0 {
		return nil, Error{message: "no kT values given", deco: []string{"MultitemperatureBias"}}
	}
	for _, kT := range kTs {
		if kT <= 0 {
			return nil, Error{message: "kT values must be positive", deco: []string{"MultitemperatureBias"}}
		}
	}
	K := len(kTs)
	btrajs := make([]*mat.Dense, len(utrajs))
	for w, us := range utrajs {
		if len(us) != len(ttrajs[w]) {
			return nil, Error{message: fmt.Sprintf(
				"trajectory %d: %d energies but %d state labels", w, len(us), len(ttrajs[w])),
				deco: []string{"MultitemperatureBias"}}
		}
		b := mat.NewDense(maxInt(len(us), 1), K, nil)
		for f, u := range us {
			for s := 0; s < K; s++ {
				b.Set(f, s, u*(1/kTs[s]-1/kTs[0]))
			}
		}
		btrajs[w] = b
	}
	return btrajs, nil
}

//AveragedBiasMatrix condenses per-frame bias-energy sequences into the
//dense K x n bias matrix the estimators take, by exponential averaging
//over the frames assigned to each configurational state:
//
//	b[t,i] = -log( (1/N_i) * sum_{frames x in state i} exp(-b_t(x)) )
//
//computed in log-space. n is taken as one past the largest discrete state
//observed. States never visited keep a zero bias row entry; the estimators
//mask them by their zero counts anyway.
func AveragedBiasMatrix(btrajs []*mat.Dense, dtrajs [][]int) (*mat.Dense, error) {
	if len(btrajs) != len(dtrajs) {
		return nil, Error{message: fmt.Sprintf(
			"%d bias sequences but %d discrete trajectories", len(btrajs), len(dtrajs)),
			deco: []string{"AveragedBiasMatrix"}}
	}
	n := 0
	K := 0
	for w, dtraj := range dtrajs {
		r, c := btrajs[w].Dims()
		if K == 0 {
			K = c
		} else if c != K {
			return nil, Error{message: fmt.Sprintf(
				"bias sequence %d covers %d thermodynamic states, earlier ones %d", w, c, K),
				deco: []string{"AveragedBiasMatrix"}}
		}
		if len(dtraj) > r {
			return nil, Error{message: fmt.Sprintf(
				"trajectory %d: %d frames but only %d bias rows", w, len(dtraj), r),
				deco: []string{"AveragedBiasMatrix"}}
		}
		for _, i := range dtraj {
			if i < 0 {
				return nil, Error{message: fmt.Sprintf("negative discrete state %d", i),
					deco: []string{"AveragedBiasMatrix"}}
			}
			if i >= n {
				n = i + 1
			}
		}
	}
	bias := mat.NewDense(K, n, nil)
	counts := make([]float64, n)
	accs := make([]lse.Accumulator, n)
	for t := 0; t < K; t++ {
		for i := range counts {
			counts[i] = 0
		}
		for w, dtraj := range dtrajs {
			for f, i := range dtraj {
				accs[i].Add(-btrajs[w].At(f, t))
				counts[i]++
			}
		}
		for i := 0; i < n; i++ {
			if counts[i] > 0 {
				bias.Set(t, i, -(accs[i].Sum() - math.Log(counts[i])))
			} else {
				accs[i].Sum() //reset
			}
		}
	}
	return bias, nil
}

//Estimate runs a complete umbrella-sampling estimation: bias preparation,
//aggregation and one of the two estimators. usDtrajs and mdDtrajs are the
//discretized counterparts of usTrajs and mdTrajs on a shared
//discretization. estimator selects "wham" or "dtram"; lag is only used by
//dtram. The thermodynamic-state labels of the result are returned along
//with the model.
func Estimate(usTrajs [][]float64, usDtrajs [][]int, centers, forceConstants []float64,
	mdTrajs [][]float64, mdDtrajs [][]int, kT float64,
	estimator string, lag int, o *thermo.Options) (*thermo.MEMM, *Params, error) {
	if len(usTrajs) != len(usDtrajs) || len(mdTrajs) != len(mdDtrajs) {
		return nil, nil, Error{message: "continuous and discretized trajectory lists differ in length",
			deco: []string{"Estimate"}}
	}
	ttrajs, btrajs, p, err := SamplingData(usTrajs, centers, forceConstants, mdTrajs, kT)
	if err != nil {
		return nil, nil, errDecorate(err, "Estimate")
	}
	dtrajs := append(append([][]int{}, usDtrajs...), mdDtrajs...)
	bias, err := AveragedBiasMatrix(btrajs, dtrajs)
	if err != nil {
		return nil, nil, errDecorate(err, "Estimate")
	}
	var m *thermo.MEMM
	switch estimator {
	case "wham":
		m, err = thermo.WHAM(ttrajs, dtrajs, bias, o)
	case "dtram":
		m, err = thermo.DTRAM(ttrajs, dtrajs, bias, lag, o)
	default:
		return nil, nil, Error{message: fmt.Sprintf("unsupported estimator: %s", estimator),
			deco: []string{"Estimate"}}
	}
	//non-convergence is soft: the model is still usable
	return m, p, err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

//Errors

//errDecorate adds the caller's name to an Error's decoration.
func errDecorate(err error, caller string) error {
	err2, ok := err.(interface{ Decorate(string) []string })
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err
}

//Error is the structure for umbrella-sampling preparation errors.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("gothermo umbrella error: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
