package output

import (
	"io"
	"strconv"

	"github.com/redhat-developer/openshift-checker/internal/batch"
	"github.com/redhat-developer/openshift-checker/internal/bom"
	"github.com/redhat-developer/openshift-checker/internal/model"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// CycloneDX writes a BOM with a container component per image and a
// vulnerability per check.
type CycloneDX struct {
	Provider model.ProviderInfo
}

func (f CycloneDX) Format(w io.Writer, reports []batch.Report) error {
	b := bom.NewBuilder(f.Provider)
	var failed int
	shown := visible(reports)
	for _, r := range shown {
		if r.Err != nil {
			failed++
			b.AppendFailure(r.ImageID, r.Err)
			continue
		}
		b.AppendImage(r.ImageID, r.Result)
	}
	b.AppendProperties(
		cdx.Property{Name: bom.PropertyPrefix + "provider", Value: f.Provider.ID},
		cdx.Property{Name: bom.PropertyPrefix + "images", Value: strconv.Itoa(len(shown))},
		cdx.Property{Name: bom.PropertyPrefix + "failed", Value: strconv.Itoa(failed)},
	)
	return b.AsJSON(w)
}
