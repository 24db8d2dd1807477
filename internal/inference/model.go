// Package inference wraps the pre-trained scoring artifacts. Each model is
// loaded once per process and treated as an opaque scoring function: a
// fixed-order feature vector in, a probability and a binary decision at the
// 0.5 threshold out.
package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Fixed feature dimensions of the three scoring contracts.
const (
	DiabetesFeatures   = 21
	ParkinsonsFeatures = 22
	ImageSize          = 150
	PneumoniaFeatures  = ImageSize * ImageSize * 3
)

// Threshold is the fixed decision boundary for every model.
const Threshold = 0.5

// ErrUnavailable is returned when a model artifact was missing at startup.
var ErrUnavailable = errors.New("inference: model unavailable")

// ErrDimension is returned when a feature vector has the wrong length.
var ErrDimension = errors.New("inference: feature dimension mismatch")

// artifact is the on-disk shape of a scoring model: an optional standard
// scaler plus a linear scoring head evaluated through a sigmoid.
type artifact struct {
	Name       string    `json:"name"`
	Features   int       `json:"features"`
	ScalerMean []float64 `json:"scaler_mean,omitempty"`
	ScalerStd  []float64 `json:"scaler_std,omitempty"`
	Weights    []float64 `json:"weights"`
	Bias       float64   `json:"bias"`
}

// Model is a loaded artifact ready to score feature vectors.
type Model struct {
	name string
	art  artifact
}

// LoadModel reads and validates one artifact file.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("inference: decoding %s: %w", path, err)
	}
	if art.Features <= 0 || len(art.Weights) != art.Features {
		return nil, fmt.Errorf("inference: %s: weights length %d does not match feature count %d",
			path, len(art.Weights), art.Features)
	}
	if len(art.ScalerMean) > 0 && (len(art.ScalerMean) != art.Features || len(art.ScalerStd) != art.Features) {
		return nil, fmt.Errorf("inference: %s: scaler dimensions do not match feature count %d",
			path, art.Features)
	}
	return &Model{name: art.Name, art: art}, nil
}

// Name returns the artifact's declared name.
func (m *Model) Name() string { return m.name }

// Features returns the expected input dimension.
func (m *Model) Features() int { return m.art.Features }

// Score applies the scaler and scoring head to a fixed-order feature vector
// and returns a probability in [0,1].
func (m *Model) Score(features []float64) (float64, error) {
	if len(features) != m.art.Features {
		return 0, fmt.Errorf("%w: expected %d features, got %d", ErrDimension, m.art.Features, len(features))
	}
	z := m.art.Bias
	for i, x := range features {
		if len(m.art.ScalerMean) > 0 {
			std := m.art.ScalerStd[i]
			if std == 0 {
				std = 1
			}
			x = (x - m.art.ScalerMean[i]) / std
		}
		z += m.art.Weights[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Decide scores the vector and applies the fixed threshold.
func (m *Model) Decide(features []float64) (probability float64, positive bool, err error) {
	p, err := m.Score(features)
	if err != nil {
		return 0, false, err
	}
	return p, p > Threshold, nil
}

// Registry holds the per-disease models. A nil entry means the artifact was
// missing at startup; its endpoint reports unavailable instead of crashing.
type Registry struct {
	Diabetes   *Model
	Parkinsons *Model
	Pneumonia  *Model
}

// LoadRegistry loads all three artifacts from dir. Missing or invalid
// artifacts leave the corresponding model nil; the per-model errors are
// returned for one-time logging by the caller.
func LoadRegistry(dir string) (*Registry, map[string]error) {
	reg := &Registry{}
	failures := map[string]error{}

	load := func(file string, dst **Model, wantFeatures int) {
		m, err := LoadModel(filepath.Join(dir, file))
		if err != nil {
			failures[file] = err
			return
		}
		if m.Features() != wantFeatures {
			failures[file] = fmt.Errorf("inference: %s declares %d features, expected %d", file, m.Features(), wantFeatures)
			return
		}
		*dst = m
	}

	load("diabetes.json", &reg.Diabetes, DiabetesFeatures)
	load("parkinsons.json", &reg.Parkinsons, ParkinsonsFeatures)
	load("pneumonia.json", &reg.Pneumonia, PneumoniaFeatures)
	return reg, failures
}
