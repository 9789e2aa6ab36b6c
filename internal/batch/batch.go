// Package batch checks several images in parallel. Each image is an
// independent call to the provider.
package batch

import (
	"context"
	"log/slog"

	"github.com/redhat-developer/openshift-checker/internal/checker"
	"github.com/redhat-developer/openshift-checker/internal/model"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of checking one image.
type Report struct {
	ImageID string
	Result  model.Result
	Err     error
}

// Check runs provider.Check for every image with at most limit checks in
// flight. Reports are returned in the order of images. A failing check does
// not stop the others; a done ctx cancels the ones still running.
func Check(ctx context.Context, provider checker.CheckProvider, limit int, images []string) []Report {
	reports := make([]Report, len(images))
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, image := range images {
		g.Go(func() error {
			res, err := provider.Check(ctx, model.Request{ImageID: image})
			if err != nil {
				slog.DebugContext(ctx, "image check failed", "image", image, "kind", model.Kind(err))
			}
			reports[i] = Report{ImageID: image, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() // goroutines do not return an error
	return reports
}

// Failed returns the reports with an error other than cancellation.
func Failed(reports []Report) []Report {
	var ret []Report
	for _, r := range reports {
		if r.Err != nil && model.Kind(r.Err) != "cancelled" {
			ret = append(ret, r)
		}
	}
	return ret
}
