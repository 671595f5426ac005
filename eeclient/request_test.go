package eeclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-ndvi/ee"
)

func TestRequestIDIsDeterministic(t *testing.T) {
	build := func() TableExport {
		return TableExport{
			Description: "Rainfall",
			Collection:  ee.LoadImage("img").ReduceRegions(ee.LoadTable("villages"), ee.FirstReducer(), 30),
		}
	}
	a, err := TableRequest(build(), Destination{})
	require.NoError(t, err)
	b, err := TableRequest(build(), Destination{})
	require.NoError(t, err)
	assert.Equal(t, a.RequestID, b.RequestID)

	other := build()
	other.Description = "Rainfall_copy"
	c, err := TableRequest(other, Destination{})
	require.NoError(t, err)
	assert.NotEqual(t, a.RequestID, c.RequestID)
}

func TestRequestIDDependsOnKind(t *testing.T) {
	assert.NotEqual(t, RequestID("table", "x", []byte("{}")), RequestID("image", "x", []byte("{}")))
}

func TestTableRequestRequiresDescription(t *testing.T) {
	_, err := TableRequest(TableExport{Collection: ee.LoadTable("t")}, Destination{})
	assert.Error(t, err)
}

func TestImageRequestRequiresScale(t *testing.T) {
	_, err := ImageRequest(ImageExport{Description: "NDVI_2016", Image: ee.LoadImage("i")}, Destination{})
	assert.Error(t, err)
}

func TestExpressionKeepsConstants(t *testing.T) {
	expr, _, err := Expression(ee.LoadImage("users/someone/img"))
	require.NoError(t, err)
	root := expr.Values[expr.Result]
	require.NotNil(t, root.FunctionInvocationValue)
	assert.Equal(t, "Image.load", root.FunctionInvocationValue.FunctionName)
	assert.Equal(t, "users/someone/img", root.FunctionInvocationValue.Arguments["id"].ConstantValue)
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{Dest: Destination{Kind: DestinationGCS, Bucket: "b"}}
	ctx := context.Background()

	_, err := rec.ExportTable(ctx, TableExport{Description: "NDVI_S2", Collection: ee.LoadTable("t")})
	require.NoError(t, err)
	task, err := rec.ExportImage(ctx, ImageExport{Description: "NDVI_2017", Image: ee.LoadImage("i"), Scale: 10})
	require.NoError(t, err)
	out, err := rec.Compute(ctx, ee.LoadTable("t"))
	require.NoError(t, err)

	assert.Empty(t, task.Operation)
	assert.Equal(t, EmptyFeatureCollection, out)
	require.Len(t, rec.Tables, 1)
	require.Len(t, rec.Images, 1)
	require.Len(t, rec.Computed, 1)
	assert.Equal(t, "b", rec.Images[0].FileExportOptions.GcsDestination.Bucket)
	assert.Nil(t, rec.Images[0].FileExportOptions.DriveDestination)
}
