/*
 * lse.go, part of gothermo.
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

//Package lse provides numerically stable log-space summation kernels.
//All reweighting estimators in gothermo express sums of exponentials of
//(possibly large) reduced energies through these functions, so that bias
//energies of hundreds of kT neither overflow nor lose the small terms.
package lse

import (
	"math"
	"sort"
)

//LogSumExp returns log(sum_i exp(a[i])) computed against the largest
//element, summing the remaining terms in ascending order so the smallest
//contributions are accumulated first. The slice is sorted in place; pass a
//scratch buffer if the caller needs its data preserved. An empty slice or a
//slice whose maximum is -Inf yields -Inf, which exponentiates to a clean
//zero downstream.
func LogSumExp(a []float64) float64 {
	if len(a) == 0 {
		return math.Inf(-1)
	}
	sort.Float64s(a)
	max := a[len(a)-1]
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, v := range a[:len(a)-1] {
		sum += math.Exp(v - max)
	}
	return max + math.Log1p(sum)
}

//LogSumExpPair returns log(exp(a)+exp(b)) without materializing either
//exponential. If both arguments are -Inf the result is -Inf.
func LogSumExpPair(a, b float64) float64 {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return math.Inf(-1)
	}
	if b > a {
		return b + math.Log1p(math.Exp(a-b))
	}
	return a + math.Log1p(math.Exp(b-a))
}

//Accumulator collects log-space terms for a single LogSumExp reduction,
//reusing its backing slice across reductions. The zero value is ready to
//use.
type Accumulator struct {
	terms []float64
}

//Add appends one log-space term. -Inf terms are skipped since they do not
//contribute to the sum.
func (A *Accumulator) Add(v float64) {
	if math.IsInf(v, -1) {
		return
	}
	A.terms = append(A.terms, v)
}

//Sum reduces the collected terms and resets the accumulator.
func (A *Accumulator) Sum() float64 {
	r := LogSumExp(A.terms)
	A.terms = A.terms[:0]
	return r
}
