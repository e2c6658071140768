package linear

import (
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/parameters"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Embedded hand-tuned linear models.

var (
	// PreTrainedV0 only races: it looks at the distance to the target and nothing else.
	PreTrainedV0 = NewWithWeights(
		// PiecesInTarget -> 1
		0,
		// OppPiecesInTarget -> 1
		0,

		// DistanceToTarget -> 1
		-0.5,
		// OppDistanceToTarget -> 1
		0.5,

		// Straggler -> 1
		0,
		// OppStraggler -> 1
		0,

		// PiecesInHome -> 1
		0,
		// OppPiecesInHome -> 1
		0,

		// Mobility -> 2
		0, 0,
		// NextOppMobility -> 2
		0, 0,

		// TargetBlocked -> 1
		0,

		// Bias: *Must always be last*
		0,
	).WithName("v0")

	PreTrainedV1 = NewWithWeights(
		// PiecesInTarget -> 1
		0.1500,
		// OppPiecesInTarget -> 1
		-0.1200,

		// DistanceToTarget -> 1
		-0.6000,
		// OppDistanceToTarget -> 1
		0.5000,

		// Straggler -> 1
		-0.0500,
		// OppStraggler -> 1
		0.0400,

		// PiecesInHome -> 1
		-0.0800,
		// OppPiecesInHome -> 1
		0.0600,

		// Mobility -> 2
		0.0100, 0.0800,
		// NextOppMobility -> 2
		-0.0100, -0.0800,

		// TargetBlocked -> 1
		-0.2000,

		// Bias -> 1
		0.0000,
	).WithName("v1")

	// PreTrainedBest is an alias to the current best linear model.
	PreTrainedBest = PreTrainedV1.Clone().WithName("best")
)

// NewFromParams returns the linear scorer if "linear" is set, otherwise it returns nil (and no error).
// It returns an error if an unknown model or if it is a path to file, and it can't load or parse it.
func NewFromParams(params parameters.Params) (ai.BatchValueScorer, error) {
	if _, found := params["linear"]; !found {
		return nil, nil
	}
	modelName, err := parameters.PopParamOr(params, "linear", "best")
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "best"
	}
	var selected *Scorer
	for _, scorer := range []*Scorer{PreTrainedBest, PreTrainedV0, PreTrainedV1} {
		if modelName == scorer.name {
			selected = scorer
		}
	}
	if selected == nil {
		selected, err = Load(modelName)
		if err != nil {
			err = errors.WithMessagef(err, "failed to load model \"linear=%s\"", modelName)
			return nil, err
		}
	}

	klog.V(1).Infof("Linear model %s with %d features", selected, selected.NumFeatures())
	return selected, nil
}
