// Package io reads and writes flat weight-vector files, one value per line.
// The format is deliberately plain so exported champions can be inspected or
// fed to other tooling.
package io

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func WriteWeights(path string, weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("weight vector is empty")
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, w := range weights {
		if _, err := writer.WriteString(strconv.FormatFloat(w, 'g', -1, 64)); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Sync()
}

func ReadWeights(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var weights []float64
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("parse weight at line %d: %w", line, err)
		}
		weights = append(weights, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("no weights found in %s", path)
	}
	return weights, nil
}
