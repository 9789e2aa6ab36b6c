package bom

import (
	"io"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/redhat-developer/openshift-checker/internal/model"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
)

// PropertyPrefix namespaces every property the builder writes.
const PropertyPrefix = "openshift-checker:"

var version string

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		version = "unknown"
	} else {
		version = info.Main.Version
	}
}

// Builder is a builder pattern for a CycloneDX BOM describing checked
// images and their checks.
type Builder struct {
	tool            model.ProviderInfo
	components      []cdx.Component
	vulnerabilities []cdx.Vulnerability
	properties      []cdx.Property
	refs            map[string]int
}

func NewBuilder(tool model.ProviderInfo) *Builder {
	return &Builder{
		tool: tool,
		// those MUST be initialized as cyclone-dx JSON schema do not allow items to be null
		components:      []cdx.Component{},
		vulnerabilities: []cdx.Vulnerability{},
		properties: []cdx.Property{
			{Name: PropertyPrefix + "schema_version", Value: model.SchemaVersion},
		},
		refs: make(map[string]int),
	}
}

// imageRef returns ImageRef for the first occurrence of imageID and adds
// a counter for the next ones, bom-refs must be unique within a BOM.
func (b *Builder) imageRef(imageID string) string {
	ref := ImageRef(imageID)
	b.refs[imageID]++
	if n := b.refs[imageID]; n > 1 {
		ref += "~" + strconv.Itoa(n)
	}
	return ref
}

// AppendImage adds the image as a container component and each check as a
// vulnerability affecting it, in the order of res.Checks.
func (b *Builder) AppendImage(imageID string, res model.Result) *Builder {
	ref := b.imageRef(imageID)
	b.components = append(b.components, cdx.Component{
		BOMRef: ref,
		Type:   cdx.ComponentTypeContainer,
		Name:   imageID,
	})
	for i, check := range res.Checks {
		b.vulnerabilities = append(b.vulnerabilities, cdx.Vulnerability{
			BOMRef:      ref + "#" + strconv.Itoa(i),
			ID:          check.Name,
			Source:      &cdx.Source{Name: b.tool.Name},
			Description: check.MarkdownDescription,
			Ratings: &[]cdx.VulnerabilityRating{
				{
					Severity: severity(check.Severity),
					Method:   cdx.ScoringMethodOther,
				},
			},
			Affects: &[]cdx.Affects{{Ref: ref}},
			Properties: &[]cdx.Property{
				{Name: PropertyPrefix + "status", Value: string(check.Status)},
				{Name: PropertyPrefix + "severity", Value: string(check.Severity)},
			},
		})
	}
	return b
}

// AppendFailure adds the image as a component carrying the error.
func (b *Builder) AppendFailure(imageID string, err error) *Builder {
	b.components = append(b.components, cdx.Component{
		BOMRef: b.imageRef(imageID),
		Type:   cdx.ComponentTypeContainer,
		Name:   imageID,
		Properties: &[]cdx.Property{
			{Name: PropertyPrefix + "error_kind", Value: model.Kind(err)},
			{Name: PropertyPrefix + "error", Value: err.Error()},
		},
	})
	return b
}

// AppendProperties adds BOM level properties.
func (b *Builder) AppendProperties(properties ...cdx.Property) *Builder {
	b.properties = append(b.properties, properties...)
	return b
}

// BOM returns a cdx.BOM based on a data inside the Builder
func (b *Builder) BOM() cdx.BOM {
	bom := cdx.BOM{
		JSONSchema:   "https://cyclonedx.org/schema/bom-1.6.schema.json",
		BOMFormat:    "CycloneDX",
		SpecVersion:  cdx.SpecVersion1_6,
		SerialNumber: "urn:uuid:" + uuid.New().String(),
		Version:      1,
		Metadata: &cdx.Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			// This can't be not nil otherwise this error will happen
			// json: error calling MarshalJSON for type *cyclonedx.ToolsChoice: unexpected end of JSON input
			Component: &cdx.Component{
				BOMRef:  b.tool.ID,
				Type:    cdx.ComponentTypeApplication,
				Name:    b.tool.Name,
				Version: version,
			},
		},
		Components:      &b.components,
		Vulnerabilities: &b.vulnerabilities,
		Properties:      &b.properties,
	}
	return bom
}

// AsJSON encode the BOM into JSON format
func (b *Builder) AsJSON(w io.Writer) error {
	bom := b.BOM()
	return cdx.NewBOMEncoder(w, cdx.BOMFileFormatJSON).SetPretty(true).Encode(&bom)
}

// ImageRef is the bom-ref of the first component for imageID.
func ImageRef(imageID string) string {
	return "image:" + imageID
}

// severity maps analyzer severities onto the CycloneDX enum, the original
// value is kept in a property.
func severity(s model.Severity) cdx.Severity {
	switch sev := cdx.Severity(strings.ToLower(string(s))); sev {
	case cdx.SeverityCritical, cdx.SeverityHigh, cdx.SeverityMedium,
		cdx.SeverityLow, cdx.SeverityInfo, cdx.SeverityNone:
		return sev
	default:
		return cdx.SeverityUnknown
	}
}
