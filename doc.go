/*
 * doc.go, part of gothermo.
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

/*Package thermo estimates unbiased thermodynamic and kinetic quantities from
collections of biased and unbiased molecular-dynamics simulations run under
different thermodynamic conditions, such as umbrella-sampling windows or a
temperature ladder.


	**gothermo capabilities**

    Combines discrete trajectories from K thermodynamic states with a known
	reduced bias-energy matrix into one globally consistent model.

    WHAM: the weighted histogram analysis method, a self-consistent
	reweighting of occupation counts yielding the unbiased stationary
	distribution over configurational states and one free energy per
	thermodynamic state.

    dTRAM: the discrete transition-based reweighting analysis method, which
	additionally uses lag-time transition counts and yields a detailed-balance
	consistent transition matrix at every thermodynamic state.

    Both estimators run entirely in log-space (see the lse subpackage), so
	bias energies of hundreds of kT are handled without overflow, and states
	that were never sampled are masked rather than poisoning the arithmetic
	with NaNs.

    Results are returned as an immutable multi-ensemble Markov model (MEMM)
	with convergence diagnostics.

    The umbrella subpackage derives estimator input (state labels and bias
	energies) from raw one-dimensional umbrella-sampling or parallel-tempering
	data; trajio reads and writes discrete trajectories, compressed or not;
	thermoplot turns estimated distributions into two-dimensional density and
	free-energy surfaces and renders them with gonum/plot.

Memory scales as O(K*n) for occupation and bias arrays and O(K*n^2) for the
dTRAM transition counts, which is the binding constraint when the
configurational discretization is fine. Estimation itself is a tight,
single-threaded loop with no shared state between calls, so independent
estimations can run concurrently without coordination.
*/
package thermo
