package gradectl

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// ScoreInput is the document read by the score command. JSON documents
// parse as well since JSON is valid YAML.
type ScoreInput struct {
	grading.RawMetrics `yaml:",inline"`
	History            *badge.History `yaml:"history,omitempty"`
}

// BatchInput is the document read by the recompute command.
type BatchInput struct {
	Requests []model.RecomputeRequest `yaml:"requests"`
}

// RegisterInput is the document read by the register command.
type RegisterInput struct {
	model.CreatorProfile `yaml:",inline"`
	Region               string `yaml:"region,omitempty"`
}

// readYAML decodes the file at path, or stdin when path is "-", into v.
func readYAML(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
