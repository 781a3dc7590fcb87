package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

// Format is an output format name.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatDOT, FormatSVG}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", s, joinFormats())
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Write renders r in format f.
func (r *Report) Write(ctx context.Context, w io.Writer, f Format) error {
	switch f {
	case FormatText, "":
		return r.WriteText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatDOT:
		_, err := io.WriteString(w, r.DOT(DOTOptions{}))
		return err
	case FormatSVG:
		svg, err := RenderSVG(ctx, r.DOT(DOTOptions{}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return pkgerrors.New(pkgerrors.ErrCodeUnsupported, "unsupported format %q", f)
}

// WriteText writes the console layout:
//
//	Deepest level: 3
//	Deepest node: Z
//
//	hierarchy for Z (bottom up):
//	Y
//	X
//
// An empty tree prints "no data".
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	if r.NoData {
		b.WriteString("no data\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Deepest level: %d\n", r.MaxDepth)
	fmt.Fprintf(&b, "Deepest node: %s\n", strings.Join(r.DeepestIDs(), ", "))
	b.WriteString("\n")
	for _, c := range r.Deepest {
		fmt.Fprintf(&b, "hierarchy for %s (bottom up):\n", c.ID)
		for _, id := range c.Hierarchy {
			b.WriteString(id)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
