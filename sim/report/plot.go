// Package report persists the result series of a session: line plots with
// their raw data, CSV tables, summary statistics and the run directory.
package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// DefaultDPI is the resolution of saved plots.
	DefaultDPI = 96

	plotWidth  = 20 * vg.Inch
	plotHeight = 11.25 * vg.Inch
	fontSize   = 24
	// yPadding widens each y limit by this fraction of its magnitude.
	yPadding = 0.05
)

// Visualization writes plots and their data files into Dir.
type Visualization struct {
	Dir string
	DPI int
}

// NewVisualization returns a Visualization writing into dir. A non-positive
// dpi selects DefaultDPI.
func NewVisualization(dir string, dpi int) *Visualization {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Visualization{Dir: dir, DPI: dpi}
}

// PlotPath returns the path of the image written for name.
func (v *Visualization) PlotPath(name string) string {
	return filepath.Join(v.Dir, "plot_"+name+".png")
}

// DataPath returns the path of the data file written for name.
func (v *Visualization) DataPath(name string) string {
	return filepath.Join(v.Dir, "plot_"+name+"_data.txt")
}

// SaveDataAndPlot writes data as a line plot over its index and as a text
// file with one value per line. An empty series produces the data file only.
func (v *Visualization) SaveDataAndPlot(data []float64, name, xlabel, ylabel string) error {
	if err := v.saveData(data, name); err != nil {
		return err
	}
	if len(data) == 0 {
		logrus.Warnf("No data for plot %q, skipping image", name)
		return nil
	}

	p := plot.New()
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	for _, style := range []*draw.TextStyle{&p.X.Label.TextStyle, &p.Y.Label.TextStyle, &p.X.Tick.Label, &p.Y.Tick.Label} {
		style.Font.Size = vg.Points(fontSize)
	}

	pts := make(plotter.XYs, len(data))
	for i, y := range data {
		pts[i].X = float64(i)
		pts[i].Y = y
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("building %s plot: %w", name, err)
	}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)

	if lo, hi, ok := YLimits(data); ok {
		p.Y.Min, p.Y.Max = lo, hi
	}

	canvas := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(v.DPI))
	p.Draw(draw.New(canvas))

	f, err := os.Create(v.PlotPath(name))
	if err != nil {
		return fmt.Errorf("creating %s plot: %w", name, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s plot: %w", name, err)
	}
	return f.Close()
}

func (v *Visualization) saveData(data []float64, name string) error {
	f, err := os.Create(v.DataPath(name))
	if err != nil {
		return fmt.Errorf("creating %s data file: %w", name, err)
	}
	w := bufio.NewWriter(f)
	for _, value := range data {
		w.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s data file: %w", name, err)
	}
	return f.Close()
}

// YLimits returns the y range of a plot of data: the data range widened by
// 5% of the magnitude of each bound. ok is false when the range would be
// empty, leaving the axis to autoscale.
func YLimits(data []float64) (lo, hi float64, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	minV, maxV := data[0], data[0]
	for _, v := range data[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	lo = minV - yPadding*math.Abs(minV)
	hi = maxV + yPadding*math.Abs(maxV)
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}
