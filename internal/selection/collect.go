package selection

import (
	"github.com/ocracle/ocracle/internal/discovery"
	"github.com/ocracle/ocracle/internal/models"
)

// Input is one folder to sample from. Limit overrides the selector cap when non-nil.
type Input struct {
	Dir   string
	Limit *int
}

// Collect discovers images in each input, pairs them with ground truth, and
// applies the selector to each input separately. Images reached through
// more than one input are kept once. With no inputs the whole root is one input.
func (s *Selector) Collect(root string, inputs []Input, filter discovery.Filter) ([]models.ImageTask, error) {
	if len(inputs) == 0 {
		inputs = []Input{{Dir: root}}
	}

	seen := map[string]bool{}
	var out []models.ImageTask
	for _, in := range inputs {
		found, err := discovery.Discover(root, in.Dir, filter)
		if err != nil {
			return nil, err
		}
		found, err = discovery.AttachGroundTruth(found)
		if err != nil {
			return nil, err
		}

		sub := *s
		if in.Limit != nil {
			sub.Limit = *in.Limit
		}
		picked, err := sub.Select(found)
		if err != nil {
			return nil, err
		}
		for _, t := range picked {
			if seen[t.RelPath] {
				continue
			}
			seen[t.RelPath] = true
			out = append(out, t)
		}
	}
	return out, nil
}
