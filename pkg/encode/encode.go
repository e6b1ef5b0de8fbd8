// Package encode turns rendered frame sequences into WebM clips by
// shelling out to ffmpeg.
package encode

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

	"github.com/carmandale/previewBuilder/pkg/render"
)

// DefaultBinary is used when Encoder.Binary is empty.
const DefaultBinary = "ffmpeg"

// DefaultFrameRate is the input and output frame rate of the clip.
const DefaultFrameRate = 30

// frameRe matches ffmpeg's running "frame=  42" status lines.
var frameRe = regexp.MustCompile(`frame=\s*(\d+)`)

// Encoder converts a frame sequence into a VP8 WebM with alpha
// metadata, using the fixed settings the preview pipeline has always
// shipped with.
type Encoder struct {
	Binary    string // Path to ffmpeg; DefaultBinary if empty
	FrameRate int    // DefaultFrameRate if zero
}

// EncodeWebM encodes the frames under framesDir into outPath.
// frameCount scales ffmpeg's frame counter into the 0..100 progress
// percentages forwarded to progress (may be nil). On a nonzero exit the
// returned error carries ffmpeg's stderr tail.
func (e *Encoder) EncodeWebM(ctx context.Context, framesDir, outPath string, frameCount int, progress func(pct int)) error {
	bin := e.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	rate := e.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}

	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-framerate", strconv.Itoa(rate),
		"-i", filepath.Join(framesDir, render.FramePattern),
		"-c:v", "libvpx",
		"-auto-alt-ref", "0",
		"-pix_fmt", "yuva420p",
		"-metadata:s:v:0", "alpha_mode=1",
		"-crf", "4",
		"-b:v", "10M",
		"-r", strconv.Itoa(rate),
		outPath,
	)

	// ffmpeg reports status on stderr, overwriting the line with \r.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", bin, err)
	}

	var tail bytes.Buffer
	last := -1

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		line := scanner.Text()
		recordTail(&tail, line)

		match := frameRe.FindStringSubmatch(line)
		if match == nil || frameCount <= 0 {
			continue
		}
		frame, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		pct := min(100, frame*100/frameCount)
		if pct <= last {
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
		msg := strings.TrimSpace(tail.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}

// scanStatusLines splits on \n or \r so ffmpeg's carriage-return
// status updates come through as separate lines.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// recordTail keeps the last few non-status lines for error reporting.
func recordTail(tail *bytes.Buffer, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "frame=") {
		return
	}
	if tail.Len() > 2048 {
		tail.Reset()
	}
	if tail.Len() > 0 {
		tail.WriteByte('\n')
	}
	tail.WriteString(line)
}
