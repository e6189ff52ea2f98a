/*
 * options.go, part of gothermo.
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

//Options collects the iteration controls shared by the WHAM and DTRAM
//estimators. dtTraj and useWHAM are ignored by WHAM.
type Options struct {
	maxiter int
	maxerr  float64
	errOut  int    //record the convergence increment every errOut iterations. 0 disables the history.
	lllOut  int    //likewise for the log-likelihood. 0 disables.
	dtTraj  string //physical time per frame, carried through as a label only
	useWHAM bool   //seed the dTRAM iteration with a converged WHAM solution
}

//DefaultOptions returns the iteration controls used when the caller has no
//opinion: a tight tolerance with a generous iteration cap and no history
//recording.
func DefaultOptions() *Options {
	o := new(Options)
	o.maxiter = 100000
	o.maxerr = 1.0e-15
	o.dtTraj = "1 step"
	return o
}

//Maxiter returns the iteration cap, and sets it to a new value, if given.
func (O *Options) Maxiter(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxiter = n[0]
	}
	return O.maxiter
}

//Maxerr returns the convergence tolerance on the largest free-energy
//change between iterations, and sets it to a new value, if given.
func (O *Options) Maxerr(e ...float64) float64 {
	if len(e) > 0 && e[0] > 0 {
		O.maxerr = e[0]
	}
	return O.maxerr
}

//ErrOut returns the recording stride for the convergence-error history,
//and sets it to a new value, if given. 0 disables recording.
func (O *Options) ErrOut(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.errOut = n[0]
	}
	return O.errOut
}

//LllOut returns the recording stride for the log-likelihood history,
//and sets it to a new value, if given. 0 disables recording.
func (O *Options) LllOut(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.lllOut = n[0]
	}
	return O.lllOut
}

//DtTraj returns the physical-time-per-frame label, and sets it to a new
//value, if given. The label is not used in the numerics; it only labels
//the time unit of reported kinetic quantities.
func (O *Options) DtTraj(s ...string) string {
	if len(s) > 0 && s[0] != "" {
		O.dtTraj = s[0]
	}
	return O.dtTraj
}

//UseWHAM returns whether the dTRAM iteration is seeded with a WHAM
//solution of the same count data, and sets it, if given. The warm start
//only accelerates convergence; it does not change the fixed point.
func (O *Options) UseWHAM(b ...bool) bool {
	if len(b) > 0 {
		O.useWHAM = b[0]
	}
	return O.useWHAM
}
