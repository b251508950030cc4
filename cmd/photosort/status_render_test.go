package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Sorted", statusOK, "/archive/C001_pre_op_front.jpg", false)
	if !strings.Contains(line, "Sorted:") || !strings.Contains(line, "[OK]") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.HasSuffix(line, "/archive/C001_pre_op_front.jpg") {
		t.Fatalf("message not appended: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("uncolored line contains ansi codes: %q", line)
	}

	colored := renderStatusLine("Warning", statusWarn, "source preserved", true)
	if !strings.HasPrefix(colored, "\x1b[33m") || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colored line not wrapped in ansi codes: %q", colored)
	}
}

func TestRenderStatusLineNoMessage(t *testing.T) {
	line := renderStatusLine("Batch", statusInfo, "", false)
	if !strings.HasSuffix(line, "[INFO]") {
		t.Fatalf("bare kind should end the line: %q", line)
	}
}

func TestRenderBatchHeader(t *testing.T) {
	header := renderBatchHeader("20260301120000000_incoming_abcd1234", false)
	if header != "== Batch 20260301120000000_incoming_abcd1234 ==" {
		t.Fatalf("unexpected header: %q", header)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Filename", "Status", "Detail"},
		[][]string{
			{"IMG_1.jpg", "sorted", "/archive/C001_pre_op_front.jpg"},
			{"IMG_2.jpg", "skipped"},
		},
	)
	for _, want := range []string{"Filename", "IMG_1.jpg", "sorted", "IMG_2.jpg", "skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	// Short rows pad to the header width rather than panicking.
	if lines := strings.Split(out, "\n"); len(lines) < 5 {
		t.Fatalf("table too short:\n%s", out)
	}
}

func TestRenderTableNoColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
