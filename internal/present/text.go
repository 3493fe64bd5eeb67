package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/voltpath/stationfinder/internal/models"
)

// TextRenderer is a terminal binding. It prints the list as a table and
// describes map updates as plain lines when Verbose is set.
type TextRenderer struct {
	Out     io.Writer
	Verbose bool
}

var (
	_ ListRenderer = (*TextRenderer)(nil)
	_ MapRenderer  = (*TextRenderer)(nil)
)

func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{Out: out}
}

func (r *TextRenderer) RenderNotice(message string) {
	fmt.Fprintln(r.Out, message)
}

func (r *TextRenderer) RenderRows(rows []ListRow) {
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISTANCE\tTYPE\tPRICE\tDIRECTIONS")
	for _, row := range rows {
		price := "-"
		if row.Price != nil {
			price = *row.Price
		}
		distance := row.Distance
		if distance == "" {
			distance = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Name, distance, humanize(row.AmenityKind), price, row.DirectionsURL)
	}
	tw.Flush()
}

func (r *TextRenderer) ClearMarkers() {}

func (r *TextRenderer) DrawMarkers(markers []Marker) {
	if r.Verbose {
		fmt.Fprintf(r.Out, "map: %d markers\n", len(markers))
	}
}

func (r *TextRenderer) SetView(center models.Coordinate, zoom int) {
	if r.Verbose {
		fmt.Fprintf(r.Out, "map: center %s zoom %d\n", center, zoom)
	}
}

func (r *TextRenderer) FitBounds(bounds Bounds) {
	if r.Verbose {
		fmt.Fprintf(r.Out, "map: fit %s to %s\n", bounds.SouthWest, bounds.NorthEast)
	}
}

// charging_station -> charging station
func humanize(kind string) string {
	return strings.ReplaceAll(kind, "_", " ")
}
