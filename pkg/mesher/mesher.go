// Package mesher wraps the groove-mesher photogrammetry binary, which
// turns a directory of photos into a textured model file.
package mesher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBinary is used when Mesher.Binary is empty.
const DefaultBinary = "groove-mesher"

// Quality selects the mesher output tier.
type Quality int

const (
	QualityPreview Quality = iota
	QualityFinal
)

func (q Quality) String() string {
	if q == QualityFinal {
		return "final"
	}
	return "preview"
}

func (q Quality) flag() string {
	if q == QualityFinal {
		return "--create-final-model"
	}
	return "--create-preview"
}

// progressRe matches the mesher's progress lines on stdout.
var progressRe = regexp.MustCompile(`Progress = (\d+)%`)

// Mesher runs groove-mesher over a photo directory.
type Mesher struct {
	Binary string // Path to the mesher binary; DefaultBinary if empty
}

// OutputPath returns the file the mesher actually writes for the
// requested output path. The preview tier inserts a ".usdzpreview"
// suffix before the extension; the final tier writes the path as given.
func OutputPath(out string, q Quality) string {
	if q != QualityPreview {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + ".usdzpreview" + ext
}

// Run executes the mesher against srcDir, writing the model to out.
// Progress percentages parsed from the mesher's output are forwarded to
// progress (may be nil) in increasing order. On a nonzero exit the
// returned error carries the mesher's stderr.
func (m *Mesher) Run(ctx context.Context, srcDir, out string, q Quality, progress func(pct int)) error {
	bin := m.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, bin, srcDir, out, q.flag())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("mesher stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", bin, err)
	}

	last := -1
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		match := progressRe.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		pct, err := strconv.Atoi(match[1])
		if err != nil || pct <= last {
			continue
		}
		last = pct
		if progress != nil {
			progress(pct)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}
