// Package export writes charts out of the terminal: static SVG/PNG snapshots
// of the presentation layout, a SQLite directory cache that the sqlite source
// can reopen, and the JSON report behind --robot-json.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/metrics"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1600
	DefaultHeight = 900
)

const (
	headerHeight = 72.0
	legendRows   = 6
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path    string         // Output path; format inferred from extension when Format empty
	Format  string         // "svg" or "png" (case-insensitive)
	Title   string         // Chart description shown in the header
	Width   int            // Canvas width in pixels, DefaultWidth when 0
	Height  int            // Canvas height in pixels, DefaultHeight when 0
	Members []model.Member // Chart data
	Focus   string         // Optional member id drawn with a highlight ring
	Demo    bool           // Adds a "demo data" tag to the header
}

// SaveSnapshot renders the full-tree layout of opts.Members to opts.Path.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Members) == 0 {
		return fmt.Errorf("no members to export")
	}
	format, err := snapshotFormat(&opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	defer metrics.Timer(metrics.ExportRender)()
	sc := buildScene(opts)

	switch format {
	case "png":
		return renderPNG(opts.Path, sc)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		if err := renderSVG(f, sc); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// WriteSVG renders the snapshot as SVG to w.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	if len(opts.Members) == 0 {
		return fmt.Errorf("no members to export")
	}
	return renderSVG(w, buildScene(opts))
}

func snapshotFormat(opts *SnapshotOptions) (string, error) {
	if opts.Path == "" {
		return "", fmt.Errorf("output path is required")
	}
	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg"
			if filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, nil
}

// --- scene -----------------------------------------------------------------

type sceneNode struct {
	Member   model.Member
	X, Y     float64 // centre, pixels
	R        float64 // radius, pixels
	Fill     string
	Stroke   string
	Root     bool
	Focused  bool
	Initials string
	Label    string
}

type scene struct {
	Width, Height int
	Title         string
	Subtitle      string
	Nodes         []sceneNode
	Edges         []layout.Connector // pixel coordinates
	Legend        [][2]string
}

func buildScene(opts SnapshotOptions) scene {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	store := hierarchy.New(opts.Members)
	res := layout.Compact(store)
	palette := layout.DepartmentPalette(store.Members())

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Organization Chart"
	}
	subtitle := fmt.Sprintf("%d members · %d levels", len(res.Nodes), res.MaxLevel+1)
	if opts.Demo {
		subtitle += " · demo data"
	}

	plotH := float64(height) - headerHeight
	toPx := func(p layout.Point) layout.Point {
		return layout.Point{
			X: p.X / 100 * float64(width),
			Y: headerHeight + p.Y/100*plotH,
		}
	}

	sc := scene{
		Width:    width,
		Height:   height,
		Title:    title,
		Subtitle: subtitle,
		Legend:   palette.Legend(legendRows),
	}
	for _, n := range res.Nodes {
		isRoot := n.Level == 0
		fill := palette.Color(n.Member)
		p := toPx(n.Pos())
		sc.Nodes = append(sc.Nodes, sceneNode{
			Member:   n.Member,
			X:        p.X,
			Y:        p.Y,
			R:        layout.NodeSize(len(res.Nodes), isRoot) / 2,
			Fill:     fill,
			Stroke:   layout.AdjustColor(fill, -40),
			Root:     isRoot,
			Focused:  n.Member.ID == opts.Focus,
			Initials: n.Member.EffectiveInitials(),
			Label:    truncate(n.Member.FirstName(), 14),
		})
	}
	for _, c := range res.Connectors {
		sc.Edges = append(sc.Edges, layout.Connector{
			From: toPx(c.From), To: toPx(c.To), FromID: c.FromID, ToID: c.ToID,
		})
	}
	return sc
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorEdge     = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorFocus    = color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorInitials = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.Width, sc.Height)
	canvas.Rect(0, 0, sc.Width, sc.Height, "fill:"+css(colorBackdrop))
	canvas.Rect(0, 0, sc.Width, int(headerHeight)-16, "fill:"+css(colorHeaderBG))
	canvas.Text(24, 30, sc.Title, fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;font-weight:bold", css(colorText)))
	canvas.Text(24, 48, sc.Subtitle, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))
	drawLegendSVG(canvas, sc)

	canvas.Gid("connectors")
	for _, e := range sc.Edges {
		canvas.Path(e.Path(), fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(colorEdge)),
			fmt.Sprintf(`data-from="%s" data-to="%s"`, svgAttr(e.FromID), svgAttr(e.ToID)))
	}
	canvas.Gend()

	canvas.Gid("members")
	for _, n := range sc.Nodes {
		x, y, r := int(n.X), int(n.Y), int(n.R)
		if n.Focused {
			canvas.Circle(x, y, r+5, fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", css(colorFocus)))
		}
		canvas.Circle(x, y, r, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", n.Fill, n.Stroke))
		canvas.Text(x, y+4, n.Initials, fmt.Sprintf("fill:%s;font-size:%dpx;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(colorInitials), fontSize(n.R)))
		canvas.Text(x, y+r+14, n.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", css(colorText)))
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func drawLegendSVG(canvas *svg.SVG, sc scene) {
	x := sc.Width - 24
	for i := len(sc.Legend) - 1; i >= 0; i-- {
		entry := sc.Legend[i]
		label := truncate(entry[0], 18)
		w := 20 + 7*len([]rune(label))
		x -= w
		canvas.Circle(x+6, 38, 6, "fill:"+entry[1])
		canvas.Text(x+16, 42, label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(colorSubtle)))
		x -= 12
	}
}

func renderPNG(path string, sc scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRectangle(0, 0, float64(sc.Width), headerHeight-16)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sc.Title, 24, 26, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(sc.Subtitle, 24, 44, 0, 0.5)
	drawLegendPNG(dc, sc)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.5)
	for _, e := range sc.Edges {
		midX := (e.From.X + e.To.X) / 2
		dc.NewSubPath()
		dc.MoveTo(e.From.X, e.From.Y)
		dc.CubicTo(midX, e.From.Y, midX, e.To.Y, e.To.X, e.To.Y)
		dc.Stroke()
	}

	for _, n := range sc.Nodes {
		if n.Focused {
			dc.SetColor(colorFocus)
			dc.SetLineWidth(3)
			dc.DrawCircle(n.X, n.Y, n.R+5)
			dc.Stroke()
		}
		dc.SetColor(hexColor(n.Fill))
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Fill()
		dc.SetColor(hexColor(n.Stroke))
		dc.SetLineWidth(2)
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Stroke()

		dc.SetColor(colorInitials)
		dc.DrawStringAnchored(n.Initials, n.X, n.Y, 0.5, 0.35)
		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.Label, n.X, n.Y+n.R+10, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

func drawLegendPNG(dc *gg.Context, sc scene) {
	x := float64(sc.Width) - 24
	for i := len(sc.Legend) - 1; i >= 0; i-- {
		entry := sc.Legend[i]
		label := truncate(entry[0], 18)
		x -= 20 + 7*float64(len([]rune(label)))
		dc.SetColor(hexColor(entry[1]))
		dc.DrawCircle(x+6, 38, 6)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(label, x+16, 38, 0, 0.5)
		x -= 12
	}
}

// --- helpers ---------------------------------------------------------------

func fontSize(r float64) int {
	size := int(r * 0.7)
	if size < 9 {
		return 9
	}
	return size
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func hexColor(hex string) color.RGBA {
	r, g, b, ok := layout.ParseHex(hex)
	if !ok {
		return colorSubtle
	}
	return color.RGBA{r, g, b, 0xff}
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func svgAttr(s string) string {
	return attrEscaper.Replace(s)
}
