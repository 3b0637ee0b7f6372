package media

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Renderer writes media assets under {root}/{slug}/media.
type Renderer struct {
	root string
}

func NewRenderer(root string) *Renderer {
	return &Renderer{root: root}
}

// Generate renders the spec to a PNG and returns the written path. The
// switch over Kind is exhaustive; ParseSpec already rejected anything
// outside the enum.
func (r *Renderer) Generate(spec Spec, topicSlug string) (string, error) {
	mediaDir := filepath.Join(r.root, "media")
	if topicSlug != "" {
		mediaDir = filepath.Join(r.root, topicSlug, "media")
	}
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", err
	}
	outputPath := filepath.Join(mediaDir, spec.Filename)

	dc := gg.NewContext(spec.Width, spec.Height)
	dc.SetFontFace(basicfont.Face7x13)

	switch spec.Kind {
	case KindDiagram:
		if len(spec.Nodes) == 0 {
			return "", fmt.Errorf("diagram spec must include at least one node")
		}
		r.drawDiagram(dc, spec)
	case KindChart:
		if len(spec.Series) == 0 {
			return "", fmt.Errorf("chart spec must include at least one series")
		}
		r.drawChart(dc, spec)
	case KindImage:
		r.drawImage(dc, spec)
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

type nodeBox struct {
	x, y, w, h float64
}

func (b nodeBox) center() (float64, float64) {
	return b.x + b.w/2, b.y + b.h/2
}

// drawDiagram lays nodes out on a grid and connects them with arrows.
func (r *Renderer) drawDiagram(dc *gg.Context, spec Spec) {
	w, h := float64(spec.Width), float64(spec.Height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	cols := int(math.Ceil(math.Sqrt(float64(len(spec.Nodes)))))
	rows := int(math.Ceil(float64(len(spec.Nodes)) / float64(cols)))
	cellW := w / float64(cols)
	cellH := (h - 60) / float64(rows)

	boxW := math.Min(cellW*0.7, 260)
	boxH := math.Min(cellH*0.5, 70)

	boxes := map[string]nodeBox{}
	for i, node := range spec.Nodes {
		col := i % cols
		row := i / cols
		box := nodeBox{
			x: float64(col)*cellW + (cellW-boxW)/2,
			y: 60 + float64(row)*cellH + (cellH-boxH)/2,
			w: boxW,
			h: boxH,
		}
		boxes[node] = box

		dc.SetHexColor(spec.Palette[i%len(spec.Palette)])
		dc.DrawRoundedRectangle(box.x, box.y, box.w, box.h, 8)
		dc.FillPreserve()
		dc.SetHexColor("#1e293b")
		dc.SetLineWidth(2)
		dc.Stroke()

		cx, cy := box.center()
		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored(truncateLabel(node, 34), cx, cy, 0.5, 0.5)
	}

	dc.SetHexColor("#475569")
	dc.SetLineWidth(2)
	for _, edge := range spec.Edges {
		from, okFrom := boxes[edge.From]
		to, okTo := boxes[edge.To]
		if !okFrom || !okTo {
			continue
		}
		x1, y1 := from.center()
		x2, y2 := to.center()
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		drawArrowHead(dc, x1, y1, x2, y2)
	}

	if spec.Title != "" {
		dc.SetHexColor("#0f172a")
		dc.DrawStringAnchored(spec.Title, w/2, 28, 0.5, 0.5)
	}
}

func drawArrowHead(dc *gg.Context, x1, y1, x2, y2 float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	const size = 10
	for _, offset := range []float64{math.Pi / 7, -math.Pi / 7} {
		dc.DrawLine(x2, y2,
			x2-size*math.Cos(angle-offset),
			y2-size*math.Sin(angle-offset))
		dc.Stroke()
	}
}

// drawChart renders a minimal line or bar chart.
func (r *Renderer) drawChart(dc *gg.Context, spec Spec) {
	w, h := float64(spec.Width), float64(spec.Height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	const margin = 60.0
	plotW := w - 2*margin
	plotH := h - 2*margin

	dc.SetHexColor("#94a3b8")
	dc.SetLineWidth(1)
	dc.DrawLine(margin, h-margin, w-margin, h-margin)
	dc.DrawLine(margin, margin, margin, h-margin)
	dc.Stroke()

	maxVal := 0.0
	maxLen := 0
	for _, serie := range spec.Series {
		if len(serie.Values) > maxLen {
			maxLen = len(serie.Values)
		}
		for _, v := range serie.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}
	if maxLen < 2 {
		maxLen = 2
	}

	for si, serie := range spec.Series {
		dc.SetHexColor(spec.Palette[si%len(spec.Palette)])
		if spec.ChartKind == "bar" {
			barW := plotW / float64(maxLen) / float64(len(spec.Series)+1)
			for vi, v := range serie.Values {
				x := margin + float64(vi)*plotW/float64(maxLen) + float64(si)*barW
				barH := v / maxVal * plotH
				dc.DrawRectangle(x, h-margin-barH, barW, barH)
				dc.Fill()
			}
			continue
		}
		dc.SetLineWidth(2)
		for vi := 1; vi < len(serie.Values); vi++ {
			x1 := margin + float64(vi-1)*plotW/float64(maxLen-1)
			y1 := h - margin - serie.Values[vi-1]/maxVal*plotH
			x2 := margin + float64(vi)*plotW/float64(maxLen-1)
			y2 := h - margin - serie.Values[vi]/maxVal*plotH
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
	}

	dc.SetHexColor("#0f172a")
	if spec.Title != "" {
		dc.DrawStringAnchored(spec.Title, w/2, 28, 0.5, 0.5)
	}
	for i, label := range spec.XLabels {
		if i >= maxLen {
			break
		}
		x := margin + float64(i)*plotW/float64(maxLen)
		dc.DrawStringAnchored(truncateLabel(label, 12), x, h-margin+18, 0.5, 0.5)
	}
}

// drawImage renders a simple captioned placard.
func (r *Renderer) drawImage(dc *gg.Context, spec Spec) {
	w, h := float64(spec.Width), float64(spec.Height)
	dc.SetHexColor(spec.Palette[0])
	dc.Clear()

	dc.SetHexColor("#ffffff")
	dc.SetLineWidth(3)
	dc.DrawRectangle(20, 20, w-40, h-40)
	dc.Stroke()

	text := spec.Text
	if text == "" {
		text = spec.Title
	}
	if text == "" {
		text = "Generated Image"
	}
	dc.DrawStringWrapped(text, w/2, h/2, 0.5, 0.5, w-80, 1.5, gg.AlignCenter)
}

func truncateLabel(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
