package extract

import (
	"context"

	"github.com/google/uuid"
	"github.com/krysczajkowski/ytcomments"
	"golang.org/x/sync/errgroup"
)

// Runner extracts a batch of videos. Videos are processed one at a time
// in input order unless Concurrency raises the limit; concurrent videos
// never share pagination state, and each one gets its own egress handle
// so no two in-flight extractions share an egress identity.
type Runner struct {
	Extractor *Extractor

	// Egress, if set, supplies one egress handle per video.
	Egress ytcomments.EgressProvider

	// Concurrency limits in-flight videos. Zero or one means strictly
	// sequential.
	Concurrency int

	// RunID tags every result; a fresh id is generated when empty.
	RunID string
}

// Run extracts every reference and returns one result per input, in input
// order. Per-video failures land in the corresponding result; Run itself
// never fails.
func (r *Runner) Run(ctx context.Context, refs []*ytcomments.VideoRef) []*ytcomments.ExtractionResult {
	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	results := make([]*ytcomments.ExtractionResult, len(refs))

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g := &errgroup.Group{}
	g.SetLimit(concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			// Shallow copy: own egress handle per video, shared Source.
			ex := *r.Extractor
			if r.Egress != nil {
				if handle, err := r.Egress.NextEgress(); err == nil {
					ex.Egress = handle
				}
			}

			result := ex.Extract(ctx, ref)
			result.RunID = runID
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summary aggregates a batch of results for reporting.
type Summary struct {
	RunID     string
	Videos    int
	Completed int
	Partial   int
	Failed    int
	Comments  int
}

// Summarize builds a Summary from a batch of results.
func Summarize(results []*ytcomments.ExtractionResult) Summary {
	var s Summary
	for _, result := range results {
		if s.RunID == "" {
			s.RunID = result.RunID
		}
		s.Videos++
		s.Comments += len(result.Comments)
		switch result.Status() {
		case "completed":
			s.Completed++
		case "partial":
			s.Partial++
		default:
			s.Failed++
		}
	}
	return s
}
