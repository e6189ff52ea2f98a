/*
 * trajio.go, part of gothermo.
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

//Package trajio reads and writes discrete trajectories, i.e. sequences of
//integer state labels, one whitespace-separated integer per frame.
//Files can be stored plain or compressed; the compression is deduced from
//the file extension: .gz (gzip), .zst (zstd), .lzw, and anything else is
//taken as plain text.
package trajio

import (
	"bufio"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//extension returns the lower-cased last extension of a file name.
func extension(fname string) string {
	parts := strings.Split(fname, ".")
	return strings.ToLower(parts[len(parts)-1])
}

//prepReader opens fname and wraps it in a decompressing reader according
//to its extension.
func prepReader(fname string) (io.ReadCloser, *os.File, error) {
	fh, err := os.Open(fname)
	if err != nil {
		return nil, nil, Error{message: err.Error(), filename: fname, deco: []string{"prepReader"}}
	}
	reader := bufio.NewReader(fh)
	switch extension(fname) {
	case "gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			fh.Close()
			return nil, nil, Error{message: err.Error(), filename: fname, deco: []string{"prepReader"}}
		}
		return gz, fh, nil
	case "zst":
		zr, err := zstd.NewReader(reader)
		if err != nil {
			fh.Close()
			return nil, nil, Error{message: err.Error(), filename: fname, deco: []string{"prepReader"}}
		}
		return zr.IOReadCloser(), fh, nil
	case "lzw":
		return lzw.NewReader(reader, lzwOrder, lzwLitwidth), fh, nil
	default:
		return io.NopCloser(reader), fh, nil
	}
}

//prepWriter creates fname and wraps it in a compressing writer according
//to its extension.
func prepWriter(fname string) (io.WriteCloser, *os.File, error) {
	fh, err := os.Create(fname)
	if err != nil {
		return nil, nil, Error{message: err.Error(), filename: fname, deco: []string{"prepWriter"}}
	}
	switch extension(fname) {
	case "gz":
		return gzip.NewWriter(fh), fh, nil
	case "zst":
		zw, err := zstd.NewWriter(fh)
		if err != nil {
			fh.Close()
			return nil, nil, Error{message: err.Error(), filename: fname, deco: []string{"prepWriter"}}
		}
		return zw, fh, nil
	case "lzw":
		return lzw.NewWriter(fh, lzwOrder, lzwLitwidth), fh, nil
	default:
		return fh, fh, nil
	}
}

//Read returns the discrete trajectory stored in fname.
func Read(fname string) ([]int, error) {
	r, fh, err := prepReader(fname)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	defer r.Close()
	var traj []int
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return nil, Error{message: fmt.Sprintf("frame %d: %s", len(traj), err.Error()),
				filename: fname, deco: []string{"Read"}}
		}
		traj = append(traj, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{message: err.Error(), filename: fname, deco: []string{"Read"}}
	}
	return traj, nil
}

//ReadAll reads several trajectory files into the list-of-sequences form
//the estimators take.
func ReadAll(fnames ...string) ([][]int, error) {
	trajs := make([][]int, 0, len(fnames))
	for _, fname := range fnames {
		traj, err := Read(fname)
		if err != nil {
			return nil, errDecorate(err, "ReadAll")
		}
		trajs = append(trajs, traj)
	}
	return trajs, nil
}

//Write stores traj in fname, one frame per line, compressed or not
//according to the file extension.
func Write(fname string, traj []int) error {
	w, fh, err := prepWriter(fname)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, v := range traj {
		if _, err := bw.WriteString(strconv.Itoa(v) + "\n"); err != nil {
			w.Close()
			fh.Close()
			return Error{message: err.Error(), filename: fname, deco: []string{"Write"}}
		}
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		fh.Close()
		return Error{message: err.Error(), filename: fname, deco: []string{"Write"}}
	}
	if err := w.Close(); err != nil {
		fh.Close()
		return Error{message: err.Error(), filename: fname, deco: []string{"Write"}}
	}
	if w != io.WriteCloser(fh) {
		if err := fh.Close(); err != nil {
			return Error{message: err.Error(), filename: fname, deco: []string{"Write"}}
		}
	}
	return nil
}

//Errors

//errDecorate adds the caller's name to an Error's decoration.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

//Error is the structure for discrete-trajectory file errors.
type Error struct {
	message  string
	filename string
	deco     []string
}

func (err Error) Error() string {
	return fmt.Sprintf("trajio file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }
