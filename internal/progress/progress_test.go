package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestMeterTickApproachesTarget(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "Rendering")
	m.SetPercent(100)

	prev := m.shown
	for i := 0; i < 10; i++ {
		m.Tick()
		if m.shown < prev {
			t.Fatalf("displayed fraction moved backwards: %v -> %v", prev, m.shown)
		}
		prev = m.shown
	}

	if m.shown <= 0 {
		t.Error("displayed fraction never moved toward the target")
	}
	if m.shown > 1 {
		t.Errorf("displayed fraction overshot: %v", m.shown)
	}
}

func TestMeterDrawsCarriageReturnLines(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "Encoding")
	m.SetPercent(50)
	m.Tick()
	m.Tick()

	out := buf.String()
	if !strings.HasPrefix(out, "\r") {
		t.Error("meter lines should start with a carriage return")
	}
	if strings.Contains(out, "\n") {
		t.Error("ticks should not emit newlines")
	}
	if !strings.Contains(out, "Encoding [") {
		t.Errorf("output %q missing label", out)
	}
}

func TestMeterTargetNeverRegresses(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "x")

	m.SetPercent(80)
	m.SetPercent(40) // Late or out-of-order report
	if m.target != 0.8 {
		t.Errorf("target = %v, want 0.8", m.target)
	}
}

func TestMeterReport(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "x")

	m.Report(45, 180)
	if m.target != 0.25 {
		t.Errorf("target = %v, want 0.25", m.target)
	}

	m.Report(0, 0) // Ignored
	if m.target != 0.25 {
		t.Errorf("target changed on zero total: %v", m.target)
	}
}

func TestMeterFinish(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "Meshing")
	m.SetPercent(30)
	m.Start()
	m.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("output %q should end at 100%%", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should terminate the line")
	}

	// Finishing twice is harmless.
	m.Finish()
}

func TestMeterFractionClamped(t *testing.T) {
	var buf bytes.Buffer
	m := NewMeter(&buf, "x")

	m.SetFraction(2.5)
	if m.target != 1 {
		t.Errorf("target = %v, want clamped to 1", m.target)
	}

	m2 := NewMeter(&buf, "x")
	m2.SetFraction(-1)
	if m2.target != 0 {
		t.Errorf("target = %v, want clamped to 0", m2.target)
	}
}
