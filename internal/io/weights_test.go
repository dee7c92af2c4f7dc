package io

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWeightsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.txt")
	input := []float64{0.5, -1.25, 0, 1e-9, 123456.789}

	if err := WriteWeights(path, input); err != nil {
		t.Fatalf("write: %v", err)
	}
	output, err := ReadWeights(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(output) != len(input) {
		t.Fatalf("read %d weights, want %d", len(output), len(input))
	}
	for i := range input {
		if output[i] != input[i] {
			t.Fatalf("weight %d: %v != %v", i, output[i], input[i])
		}
	}
}

func TestWriteWeightsRejectsEmptyVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.txt")
	if err := WriteWeights(path, nil); err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestReadWeightsSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.txt")
	if err := os.WriteFile(path, []byte("0.5\n\n  \n-1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	weights, err := ReadWeights(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(weights) != 2 || weights[0] != 0.5 || weights[1] != -1 {
		t.Fatalf("unexpected weights: %v", weights)
	}
}

func TestReadWeightsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.txt")
	if err := os.WriteFile(path, []byte("0.5\nnot-a-number\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadWeights(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadWeightsMissingFile(t *testing.T) {
	if _, err := ReadWeights(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
