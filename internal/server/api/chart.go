package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ayusman/headtrack/internal/store"
)

// chart handles GET /api/sessions/{id}/chart: an HTML line chart of the
// recorded x, y and z values by frame. Frames without a detection are gaps.
func (h *SessionHandler) chart(w http.ResponseWriter, r *http.Request, id string) {
	sess, samples, ok := h.load(w, id)
	if !ok {
		return
	}

	line := newPoseChart(sess, samples)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func newPoseChart(sess *store.Session, samples []store.Sample) *charts.Line {
	frames := make([]string, len(samples))
	xs := make([]opts.LineData, len(samples))
	ys := make([]opts.LineData, len(samples))
	zs := make([]opts.LineData, len(samples))

	for i, s := range samples {
		frames[i] = strconv.FormatInt(s.Seq, 10)
		if !s.Detected {
			xs[i] = opts.LineData{Value: "-"}
			ys[i] = opts.LineData{Value: "-"}
			zs[i] = opts.LineData{Value: "-"}
			continue
		}
		xs[i] = opts.LineData{Value: s.X}
		ys[i] = opts.LineData{Value: s.Y}
		zs[i] = opts.LineData{Value: s.Z}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "headtrack session", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Tracked pose",
			Subtitle: fmt.Sprintf("session=%s strategy=%s frames=%d", sess.ID, sess.Strategy, len(samples)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	line.SetXAxis(frames).
		AddSeries("x", xs).
		AddSeries("y", ys).
		AddSeries("z", zs)

	return line
}
