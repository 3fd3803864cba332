package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	errs "github.com/matzehuels/cellroute/pkg/errors"
)

// rsvgConvert is the librsvg converter used for PDF output.
var rsvgConvert = "rsvg-convert"

// ToPDF converts SVG to PDF with rsvg-convert. It returns an UNSUPPORTED
// error when the tool is not installed (brew install librsvg, or
// apt install librsvg2-bin).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnsupported, err, "pdf output needs %s from librsvg", rsvgConvert)
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", rsvgConvert, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
