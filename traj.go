/*
 * traj.go, part of gothermo.
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

import "fmt"

//SingleTraj wraps a single state sequence as a one-element trajectory list,
//the canonical form taken by the estimators. Aggregating SingleTraj(t) and
//[][]int{t} yields identical counts.
func SingleTraj(traj []int) [][]int {
	return [][]int{traj}
}

//NormalizeTrajs validates a paired set of thermodynamic-state and
//discrete-state trajectories and reports the number of thermodynamic states
//K and configurational states n spanned by them (one past the largest index
//seen). The trajectories themselves are returned unchanged; validation has
//no side effects. A pair of different lengths, a negative state index, or
//mismatched list lengths is a ShapeError.
func NormalizeTrajs(ttrajs, dtrajs [][]int) (K, n int, err error) {
	if len(ttrajs) != len(dtrajs) {
		return 0, 0, ShapeError{message: fmt.Sprintf(
			"%d thermodynamic-state trajectories paired with %d discrete trajectories",
			len(ttrajs), len(dtrajs)), deco: []string{"NormalizeTrajs"}}
	}
	if len(ttrajs) == 0 {
		return 0, 0, ShapeError{message: "no trajectories given", deco: []string{"NormalizeTrajs"}}
	}
	for w, ttraj := range ttrajs {
		dtraj := dtrajs[w]
		if len(ttraj) != len(dtraj) {
			return 0, 0, ShapeError{message: fmt.Sprintf(
				"trajectory pair %d: ttraj has %d frames but dtraj has %d",
				w, len(ttraj), len(dtraj)), deco: []string{"NormalizeTrajs"}}
		}
		for f, t := range ttraj {
			if t < 0 {
				return 0, 0, ShapeError{message: fmt.Sprintf(
					"trajectory %d frame %d: negative thermodynamic state %d", w, f, t),
					deco: []string{"NormalizeTrajs"}}
			}
			if t >= K {
				K = t + 1
			}
		}
		for f, i := range dtraj {
			if i < 0 {
				return 0, 0, ShapeError{message: fmt.Sprintf(
					"trajectory %d frame %d: negative configurational state %d", w, f, i),
					deco: []string{"NormalizeTrajs"}}
			}
			if i >= n {
				n = i + 1
			}
		}
	}
	return K, n, nil
}
