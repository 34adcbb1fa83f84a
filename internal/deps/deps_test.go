package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"sublate/internal/config"
	"sublate/internal/deps"
)

func TestCheckBinaryAndFileRequirements(t *testing.T) {
	dir := t.TempDir()

	binary := filepath.Join(dir, "present-tool")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	model := filepath.Join(dir, "model.onnx")
	if err := os.WriteFile(model, []byte("onnx"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	reqs := []deps.Requirement{
		{Name: "Present binary", Command: binary},
		{Name: "Missing binary", Command: "clearly-not-present-binary"},
		{Name: "Present model", Path: model},
		{Name: "Missing model", Path: filepath.Join(dir, "absent.onnx")},
		{Name: "Unconfigured model", Path: ""},
	}

	results := deps.Check(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	expected := []bool{true, false, true, false, false}
	for i, want := range expected {
		if results[i].Available != want {
			t.Errorf("%s: available = %v, want %v (%s)", results[i].Name, results[i].Available, want, results[i].Detail)
		}
	}

	if results[4].Detail != "path not configured" {
		t.Errorf("unexpected detail for unconfigured path: %q", results[4].Detail)
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	statuses := []deps.Status{
		{Name: "required", Available: false},
		{Name: "optional", Available: false, Optional: true},
		{Name: "present", Available: true},
	}

	missing := deps.Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "required" {
		t.Fatalf("unexpected missing set: %+v", missing)
	}
}

func TestForConfigCoversToolsAndModels(t *testing.T) {
	cfg := config.Default()
	cfg.Recognition.EncoderPath = "/models/encoder.onnx"

	reqs := deps.ForConfig(&cfg)
	if len(reqs) != 7 {
		t.Fatalf("expected 7 requirements, got %d", len(reqs))
	}
	if reqs[0].Command == "" || reqs[2].Path == "" {
		t.Fatalf("unexpected requirement shape: %+v", reqs[:3])
	}
}
