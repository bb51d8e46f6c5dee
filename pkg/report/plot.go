package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"Framesync/pkg/session"
)

// SavePlot draws candidate offset against validity and saves it to path;
// the image format follows the file extension.
func SavePlot(path string, result *session.Result) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d/%d valid", result.Format.Name,
		result.Statistics.ValidCount, result.Statistics.Total)
	p.X.Label.Text = "Stream offset (bits)"
	p.Y.Label.Text = "Valid"

	var valid, invalid plotter.XYs
	for _, r := range result.Records {
		if r.Valid {
			valid = append(valid, plotter.XY{X: float64(r.Offset), Y: 1})
		} else {
			invalid = append(invalid, plotter.XY{X: float64(r.Offset), Y: 0})
		}
	}

	for i, set := range []struct {
		name string
		xys  plotter.XYs
	}{{"valid", valid}, {"invalid", invalid}} {
		if len(set.xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(set.xys)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(set.name, s)
	}

	if len(result.Records) == 0 {
		p.X.Min, p.X.Max = 0, float64(max(result.Statistics.Symbols, 1))
	}
	p.Y.Min, p.Y.Max = -0.5, 1.5

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
