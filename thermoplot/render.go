/*
 * render.go, part of gothermo.
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

package thermoplot

import (
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

//RenderOptions controls how a surface is drawn. The zero value gives an
//untitled linear-scale map with 100 color steps and no color bar.
type RenderOptions struct {
	Title     string
	XLabel    string
	YLabel    string
	CbarLabel string //label of the color bar; empty omits the bar
	NContours int    //contour levels or color steps, default 100
	LogScale  bool   //color the base-10 logarithm of the values
}

func (o *RenderOptions) ncontours() int {
	if o == nil || o.NContours < 2 {
		return 100
	}
	return o.NContours
}

//renderGrid returns a plot-safe copy of g: log-scaled if requested, with
//non-finite cells clamped so the color mapping stays defined. +Inf cells,
//the empty bins of a free-energy surface, go to the largest finite value;
//-Inf and NaN cells, zero or negative densities under log scale, go to the
//smallest, so an unsampled bin never colors as the most probable one.
func renderGrid(g *Grid, logScale bool) *Grid {
	z := mat.DenseCopyOf(g.z)
	gg := &Grid{x: g.x, y: g.y, z: z}
	r, c := z.Dims()
	if logScale {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				z.Set(i, j, math.Log10(z.At(i, j)))
			}
		}
	}
	min, max := gg.MinMax()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := z.At(i, j)
			switch {
			case math.IsInf(v, 1):
				z.Set(i, j, max)
			case math.IsInf(v, -1) || math.IsNaN(v):
				z.Set(i, j, min)
			}
		}
	}
	return gg
}

//newPlot prepares an empty plot with the requested labels.
func newPlot(o *RenderOptions) *plot.Plot {
	p := plot.New()
	if o != nil {
		p.Title.Text = o.Title
		p.X.Label.Text = o.XLabel
		p.Y.Label.Text = o.YLabel
	}
	p.Title.Padding = 3 * vg.Millimeter
	return p
}

//colorMap builds the color mapping over the grid's finite value range.
func colorMap(g *Grid) palette.ColorMap {
	min, max := g.MinMax()
	if max <= min {
		max = min + 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(min)
	cm.SetMax(max)
	return cm
}

//SaveMap renders the surface as a heat map and writes it as a PNG file.
//A color bar with the requested label is drawn under the map when
//CbarLabel is set.
func SaveMap(g *Grid, fname string, o *RenderOptions) error {
	gg := renderGrid(g, o != nil && o.LogScale)
	cm := colorMap(gg)
	p := newPlot(o)
	p.Add(plotter.NewHeatMap(gg, cm.Palette(o.ncontours())))
	if o != nil && o.CbarLabel != "" {
		return saveWithColorBar(p, cm, fname, o.CbarLabel)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fname)
}

//SaveContour renders the surface as a contour map and writes it as a PNG
//file.
func SaveContour(g *Grid, fname string, o *RenderOptions) error {
	gg := renderGrid(g, o != nil && o.LogScale)
	cm := colorMap(gg)
	nc := o.ncontours()
	levels := make([]float64, nc)
	for l := range levels {
		levels[l] = cm.Min() + (cm.Max()-cm.Min())*float64(l)/float64(nc-1)
	}
	p := newPlot(o)
	p.Add(plotter.NewContour(gg, levels, cm.Palette(nc)))
	if o != nil && o.CbarLabel != "" {
		return saveWithColorBar(p, cm, fname, o.CbarLabel)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fname)
}

//saveWithColorBar stacks the map plot over a thin labeled color bar and
//writes both to one PNG canvas.
func saveWithColorBar(p *plot.Plot, cm palette.ColorMap, fname, label string) error {
	cbp := plot.New()
	cbp.Add(&plotter.ColorBar{ColorMap: cm})
	cbp.HideY()
	cbp.X.Label.Text = label
	img := vgimg.New(5*vg.Inch, 6*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{{p}, {cbp}}, tiles, dc)
	p.Draw(canvases[0][0])
	cbp.Draw(canvases[1][0])
	w, err := os.Create(fname)
	if err != nil {
		return Error{message: err.Error(), deco: []string{"saveWithColorBar"}}
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return Error{message: err.Error(), deco: []string{"saveWithColorBar"}}
	}
	return nil
}
