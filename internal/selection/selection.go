// Package selection decides which discovered images a run processes.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/ocracle/ocracle/internal/models"
)

// Policy orders and filters candidate images.
type Policy string

const (
	// PolicyRandom shuffles every candidate.
	PolicyRandom Policy = "random"
	// PolicyAvoidRescan drops images that already have a per-image result file.
	PolicyAvoidRescan Policy = "avoid-rescan"
	// PolicyPrioritizeMissing puts images whose result file lacks an enabled
	// model first, then images with no result file. Fully scanned images are dropped.
	PolicyPrioritizeMissing Policy = "prioritize-missing"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyRandom, PolicyAvoidRescan, PolicyPrioritizeMissing:
		return p, nil
	}
	return "", &models.ConfigurationError{Field: "selection.policy", Reason: fmt.Sprintf("unknown policy %q", s)}
}

// ResolvePolicy applies precedence: an explicit policy wins, then the legacy
// prioritize_scanned switch, then avoid_rescan, then random.
func ResolvePolicy(explicit string, avoidRescan, prioritizeScanned *bool) (Policy, error) {
	if explicit != "" {
		return ParsePolicy(explicit)
	}
	if prioritizeScanned != nil && *prioritizeScanned {
		return PolicyPrioritizeMissing, nil
	}
	if avoidRescan != nil && *avoidRescan {
		return PolicyAvoidRescan, nil
	}
	return PolicyRandom, nil
}

// ResultLookup reads the persisted per-image result of an image. A missing
// file returns (nil, nil).
type ResultLookup interface {
	Load(relImagePath string) (models.PerImageResult, error)
}

// Selector applies a Policy and a cap to candidate images.
type Selector struct {
	Policy Policy
	// Limit caps the selection. Zero or negative selects everything.
	Limit int
	// Models are the result keys of the enabled models.
	Models  []string
	Results ResultLookup
	rng     *rand.Rand
}

// NewSelector returns a Selector. A nil seed shuffles nondeterministically.
func NewSelector(policy Policy, limit int, seed *int64, results ResultLookup, modelKeys []string) *Selector {
	var src rand.Source
	if seed != nil {
		src = rand.NewPCG(uint64(*seed), uint64(*seed))
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{
		Policy:  policy,
		Limit:   limit,
		Models:  modelKeys,
		Results: results,
		rng:     rand.New(src),
	}
}

type scanState int

const (
	unscanned scanState = iota
	partial
	complete
)

// Select returns the images to process, in dispatch order.
func (s *Selector) Select(candidates []models.ImageTask) ([]models.ImageTask, error) {
	pool := append([]models.ImageTask(nil), candidates...)

	var selected []models.ImageTask
	switch s.Policy {
	case PolicyRandom, "":
		s.shuffle(pool)
		selected = pool

	case PolicyAvoidRescan:
		var fresh []models.ImageTask
		for _, t := range pool {
			st, err := s.state(t)
			if err != nil {
				return nil, err
			}
			if st == unscanned {
				fresh = append(fresh, t)
			}
		}
		s.shuffle(fresh)
		selected = fresh

	case PolicyPrioritizeMissing:
		var gaps, fresh []models.ImageTask
		for _, t := range pool {
			st, err := s.state(t)
			if err != nil {
				return nil, err
			}
			switch st {
			case partial:
				gaps = append(gaps, t)
			case unscanned:
				fresh = append(fresh, t)
			}
		}
		s.shuffle(gaps)
		s.shuffle(fresh)
		selected = append(gaps, fresh...)

	default:
		return nil, &models.ConfigurationError{Field: "selection.policy", Reason: fmt.Sprintf("unknown policy %q", s.Policy)}
	}

	if s.Limit > 0 && len(selected) > s.Limit {
		selected = selected[:s.Limit]
	}
	return selected, nil
}

func (s *Selector) shuffle(tasks []models.ImageTask) {
	s.rng.Shuffle(len(tasks), func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })
}

// state classifies an image by its result file. A corrupt file counts as
// partial so the image is rescanned and the file rewritten.
func (s *Selector) state(t models.ImageTask) (scanState, error) {
	if s.Results == nil {
		return unscanned, nil
	}
	res, err := s.Results.Load(t.RelPath)
	if err != nil {
		var dataErr *models.DataError
		if errors.As(err, &dataErr) {
			slog.Warn("unreadable result file", "image", t.RelPath, "error", err)
			return partial, nil
		}
		return unscanned, err
	}
	if res == nil {
		return unscanned, nil
	}
	for _, m := range s.Models {
		if _, ok := res[m]; !ok {
			return partial, nil
		}
	}
	return complete, nil
}
