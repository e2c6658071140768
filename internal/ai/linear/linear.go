// Package linear implements a pure Go linear scorer on the board features, squashed to the
// [-1, +1] range with a tanh.
//
// The weights can be given in code (see pretrained.go) or loaded from a text file with one weight per line.
package linear

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/features"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Scorer is a linear model (one weight per feature + bias) on the feature set.
// It implements ai.ValueScorer and ai.BatchValueScorer.
//
// It is immutable after creation, so it can be shared among players and goroutines.
type Scorer struct {
	name    string
	weights []float32
}

// NewWithWeights creates a new Scorer with the given weights, the last one being the bias.
// Ownership of the weights is transferred.
func NewWithWeights(weights ...float32) *Scorer {
	return &Scorer{weights: weights}
}

var (
	// Assert Scorer is an ai.ValueScorer and an ai.BatchValueScorer
	_ ai.ValueScorer      = (*Scorer)(nil)
	_ ai.BatchValueScorer = (*Scorer)(nil)
)

// WithName sets the name of the model, returned by String. It returns itself.
func (s *Scorer) WithName(name string) *Scorer {
	s.name = name
	return s
}

// Clone returns a copy of the model.
func (s *Scorer) Clone() *Scorer {
	return &Scorer{name: s.name, weights: slices.Clone(s.weights)}
}

// String implements ai.ValueScorer.
func (s *Scorer) String() string {
	if s.name == "" {
		return "linear"
	}
	return "linear:" + s.name
}

// NumFeatures the model operates on: the number of weights, without the bias.
func (s *Scorer) NumFeatures() int {
	return len(s.weights) - 1
}

func (s *Scorer) logitScore(features []float32) float32 {
	// Sum start with bias.
	sum := s.weights[len(s.weights)-1]

	// Dot product of weights and features.
	if len(s.weights)-1 != len(features) {
		exceptions.Panicf("features dimension is %d, but weights dimension is %d (+1 bias)",
			len(features), len(s.weights)-1)
	}
	for ii, feature := range features {
		sum += feature * s.weights[ii]
	}
	return sum
}

// Score implements ai.ValueScorer.
// Finished boards are scored as a win or loss, without using the model.
func (s *Scorer) Score(board *Board, player PlayerNum) float32 {
	if isEnd, score := ai.IsEndGameAndScore(board, player); isEnd {
		return score
	}
	return s.ScoreFeatures(features.FeatureVector(board, player))
}

// ScoreFeatures is like Score, but it takes the raw features as input.
func (s *Scorer) ScoreFeatures(rawFeatures []float32) float32 {
	logit := s.logitScore(rawFeatures)
	return ai.SquashScore(logit)
}

// BatchScore implements ai.BatchValueScorer.
func (s *Scorer) BatchScore(boards []*Board, player PlayerNum) (scores []float32) {
	scores = make([]float32, len(boards))
	for ii, board := range boards {
		scores[ii] = s.Score(board, player)
	}
	return
}

// AsGoCode outputs the model as Go code describing the weights for each feature.
func (s *Scorer) AsGoCode() string {
	if len(s.weights) != features.BoardFeaturesDim+1 {
		return fmt.Sprintf("model with %d weights+1 bias, BoardFeaturesDim=%d", len(s.weights)-1, features.BoardFeaturesDim)
	}
	parts := make([]string, 0, 3*len(features.BoardSpecs)+2)
	for _, fDef := range features.BoardSpecs {
		parts = append(parts, fmt.Sprintf("\n\t// %s -> %d\n\t", fDef.Name, fDef.Dim))
		for _, value := range s.weights[fDef.VecIndex : fDef.VecIndex+fDef.Dim] {
			parts = append(parts, fmt.Sprintf("%.4f, ", value))
		}
		parts = append(parts, "\n")
	}
	parts = append(parts, "\n\t// Bias -> 1\n\t")
	parts = append(parts, fmt.Sprintf("%.4f,\n", s.weights[len(s.weights)-1]))
	return strings.Join(parts, "")
}

// Save model to fileName, one weight per line. An existing file is renamed with a "~" suffix.
func (s *Scorer) Save(fileName string) error {
	if _, err := os.Stat(fileName); err == nil {
		err = os.Rename(fileName, fileName+"~")
		if err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", fileName, fileName+"~")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", fileName)
	}

	valuesStr := make([]string, len(s.weights))
	for ii, value := range s.weights {
		valuesStr[ii] = fmt.Sprintf("%g", value)
	}
	allValues := strings.Join(valuesStr, "\n")
	if err := os.WriteFile(fileName, []byte(allValues), 0644); err != nil {
		return errors.Wrapf(err, "failed to save %s", fileName)
	}
	return nil
}

// Cache of linear models read from disk.
var (
	cacheLinearScorers = map[string]*Scorer{}
	muCache            sync.Mutex
)

// Load model from fileName: one weight per line, the last being the bias.
// Empty lines and lines starting with "#" or "//" are ignored.
//
// Loaded models are cached, and reused if attempting to load the same fileName.
func Load(fileName string) (*Scorer, error) {
	muCache.Lock()
	defer muCache.Unlock()
	if cached, ok := cacheLinearScorers[fileName]; ok {
		klog.V(1).Infof("Using cache for model %q", fileName)
		return cached, nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read linear model from %s", fileName)
	}
	valuesStr := strings.Split(string(data), "\n")
	weights := make([]float32, 0, len(valuesStr))
	for lineNum, valueStr := range valuesStr {
		valueStr = strings.TrimSpace(valueStr)
		if valueStr == "" || strings.HasPrefix(valueStr, "#") || strings.HasPrefix(valueStr, "//") {
			// Skip empty lines and comments.
			continue
		}
		f64, err := strconv.ParseFloat(valueStr, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse value in file %s, at line number #%d",
				fileName, lineNum+1)
		}
		weights = append(weights, float32(f64))
	}
	if len(weights) != features.BoardFeaturesDim+1 {
		return nil, errors.Errorf("linear model in %s has %d weights, but %d features (+1 bias) are expected",
			fileName, len(weights), features.BoardFeaturesDim)
	}
	s := NewWithWeights(weights...).WithName(fileName)
	cacheLinearScorers[fileName] = s
	return s, nil
}
