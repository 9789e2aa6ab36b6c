package bom_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/redhat-developer/openshift-checker/internal/bom"
	"github.com/redhat-developer/openshift-checker/internal/model"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Parallel()

	res := model.Result{Checks: []model.Check{
		{Name: "User set to root", Status: model.StatusFailed, MarkdownDescription: "runs as root", Severity: model.SeverityHigh},
		{Name: "Owner set", Status: "warning", MarkdownDescription: "chown", Severity: "Blocker"},
	}}

	b := bom.NewBuilder(model.DefaultConfig().Provider).
		AppendImage("sha256:abc123", res).
		AppendFailure("missing", &model.ProcessError{Path: "doa", ExitCode: 1, Stderr: "image not found"})

	var buf bytes.Buffer
	require.NoError(t, b.AsJSON(&buf))

	var got cdx.BOM
	require.NoError(t, cdx.NewBOMDecoder(&buf, cdx.BOMFileFormatJSON).Decode(&got))
	require.Equal(t, cdx.SpecVersion1_6, got.SpecVersion)
	require.Equal(t, "OpenShift Checker", got.Metadata.Component.Name)

	require.NotNil(t, got.Components)
	require.Len(t, *got.Components, 2)
	require.Equal(t, bom.ImageRef("sha256:abc123"), (*got.Components)[0].BOMRef)
	require.Equal(t, cdx.ComponentTypeContainer, (*got.Components)[0].Type)
	failure := (*got.Components)[1]
	require.Equal(t, "missing", failure.Name)
	require.Contains(t, *failure.Properties, cdx.Property{Name: "openshift-checker:error_kind", Value: "process_failure"})

	require.NotNil(t, got.Vulnerabilities)
	vulns := *got.Vulnerabilities
	require.Len(t, vulns, 2)
	for i, check := range res.Checks {
		require.Equal(t, check.Name, vulns[i].ID)
		require.Equal(t, check.MarkdownDescription, vulns[i].Description)
		require.Equal(t, fmt.Sprintf("image:sha256:abc123#%d", i), vulns[i].BOMRef)
		require.Equal(t, []cdx.Affects{{Ref: "image:sha256:abc123"}}, *vulns[i].Affects)
	}
	require.Equal(t, cdx.SeverityHigh, (*vulns[0].Ratings)[0].Severity)
	require.Equal(t, cdx.SeverityUnknown, (*vulns[1].Ratings)[0].Severity)
	require.Contains(t, *vulns[1].Properties, cdx.Property{Name: "openshift-checker:severity", Value: "Blocker"})

	require.Contains(t, *got.Properties, cdx.Property{Name: "openshift-checker:schema_version", Value: model.SchemaVersion})
}

func TestBuilderEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, bom.NewBuilder(model.DefaultConfig().Provider).AsJSON(&buf))
	require.Contains(t, buf.String(), `"components": []`)
}

func TestBuilderSameImage(t *testing.T) {
	t.Parallel()

	res := model.Result{Checks: []model.Check{
		{Name: "User set to root", Status: model.StatusFailed, Severity: model.SeverityHigh},
	}}
	b := bom.NewBuilder(model.DefaultConfig().Provider).
		AppendImage("quay.io/app:1", res).
		AppendImage("quay.io/app:1", res).
		AppendFailure("quay.io/app:1", model.ErrProcessFailure).
		AppendProperties(cdx.Property{Name: "openshift-checker:images", Value: "3"})

	got := b.BOM()
	var refs []string
	for _, c := range *got.Components {
		refs = append(refs, c.BOMRef)
	}
	for _, v := range *got.Vulnerabilities {
		refs = append(refs, v.BOMRef)
	}
	require.Equal(t, []string{
		"image:quay.io/app:1",
		"image:quay.io/app:1~2",
		"image:quay.io/app:1~3",
		"image:quay.io/app:1#0",
		"image:quay.io/app:1~2#0",
	}, refs)
	require.Equal(t, []cdx.Affects{{Ref: "image:quay.io/app:1~2"}}, *(*got.Vulnerabilities)[1].Affects)
	require.Contains(t, *got.Properties, cdx.Property{Name: "openshift-checker:images", Value: "3"})
}
