/*
 * errors.go, part of gothermo.
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

//Error is the interface implemented by all errors of this library. The
//Decorate method allows information to be added to an error as it is passed
//up the call stack, without changing its type or wrapping it. If passed an
//empty string it returns the current decoration without adding to it.
type Error interface {
	error
	Decorate(string) []string
}

//ShapeError reports inconsistently shaped trajectory input, such as a
//thermodynamic-state trajectory whose length differs from its paired
//discrete trajectory, or a negative state index. It is raised before any
//estimation starts.
type ShapeError struct {
	message string
	deco    []string
}

func (err ShapeError) Error() string {
	return fmt.Sprintf("gothermo trajectory shape error: %s", err.message)
}

//Decorate adds new information to the error.
func (err ShapeError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//BiasShapeError reports a bias-energy matrix whose dimensions do not cover
//the thermodynamic or configurational state indexes observed in the
//trajectories.
type BiasShapeError struct {
	message string
	deco    []string
}

func (err BiasShapeError) Error() string {
	return fmt.Sprintf("gothermo bias shape error: %s", err.message)
}

//Decorate adds new information to the error.
func (err BiasShapeError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//NotConvergedError reports that a self-consistent iteration exhausted its
//iteration cap before the free-energy increment dropped below the requested
//tolerance. It is a soft failure: the estimator still returns the
//best-effort model, flagged as unconverged.
type NotConvergedError struct {
	Estimator  string
	Iterations int
	Err        float64 //the increment at the last iteration
	Maxerr     float64
	deco       []string
}

func (err NotConvergedError) Error() string {
	return fmt.Sprintf("gothermo %s: not converged after %d iterations, increment %g > maxerr %g",
		err.Estimator, err.Iterations, err.Err, err.Maxerr)
}

//Decorate adds new information to the error.
func (err NotConvergedError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
