package testevents

import (
	"fmt"

	"github.com/okian/h4l/internal/domain/model"
)

// Model selects the physics of a generated dataset.
type Model string

const (
	// ModelHiggs is gg -> H(125) -> ZZ* -> 4l.
	ModelHiggs Model = "higgs"
	// ModelZZ is continuum qq -> ZZ -> 4l.
	ModelZZ Model = "zz"
	// ModelData mixes both with duplicated events and no generator weights.
	ModelData Model = "data"
)

// ParseModel validates a model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelHiggs, ModelZZ, ModelData:
		return Model(s), nil
	default:
		return "", fmt.Errorf("unknown event model %q", s)
	}
}

// Dataset describes one generated dataset.
type Dataset struct {
	Name      string
	Kind      model.DatasetKind
	ProcessID int
	Model     Model
	Events    int
	ChunkSize int
}

// Config holds configuration for the generator.
type Config struct {
	// Seed makes the output reproducible; the same seed gives the same chunks.
	Seed uint64
	// Concurrency bounds the goroutines generating chunks.
	Concurrency int
	Datasets    []Dataset
}
