package bag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bag"
)

func describeFixture() *bag.Bag {
	config := bag.Base()
	bag.StorePut(config.CurrentLayer(), Region("us-east-1"))
	bag.StoreAppend(config.CurrentLayer(), Tag("x"))
	bag.StorePut(config.CurrentLayer(), SigningName("s3"))
	config.AddLayer("operation")
	bag.StoreAppend(config.CurrentLayer(), Tag("y"))
	bag.StoreMerge(config.CurrentLayer(), RetryConfig{MaxAttempts: ptr(2)})
	config.AddLayer("attempt")
	bag.Unset[Region](config.CurrentLayer())
	return config
}

func TestDescribe(t *testing.T) {
	layers := bag.Describe(describeFixture())
	require.Len(t, layers, 3)

	assert.Equal(t, "attempt", layers[0].Name)
	assert.False(t, layers[0].Frozen)
	require.Len(t, layers[0].Items, 1)
	assert.Equal(t, bag.ItemDescriptor{
		Type:   "bag_test.Region",
		Policy: "replace",
		State:  "unset",
		Reason: "bag_test.Region",
	}, layers[0].Items[0])

	assert.Equal(t, "operation", layers[1].Name)
	assert.True(t, layers[1].Frozen)
	require.Len(t, layers[1].Items, 2)
	assert.Equal(t, "[]bag_test.Tag", layers[1].Items[0].Type)
	assert.Equal(t, "append", layers[1].Items[0].Policy)
	assert.Equal(t, []Tag{"y"}, layers[1].Items[0].Value)

	assert.Equal(t, bag.InterceptorState, layers[2].Name)
	assert.Len(t, layers[2].Items, 3)

	assert.Nil(t, bag.Describe(nil))
}

func TestSnapshot(t *testing.T) {
	snapshot := bag.Snapshot(describeFixture())

	assert.NotContains(t, snapshot, "region", "unset types resolve to nothing")
	assert.Equal(t, []Tag{"y", "x"}, snapshot["tags"])
	retry, ok := snapshot["retry"].(RetryConfig)
	require.True(t, ok)
	assert.Equal(t, 2, *retry.MaxAttempts)
	assert.Len(t, snapshot, 2, "types without an export name are skipped")

	assert.Empty(t, bag.Snapshot(nil))
}

func TestTraceOf(t *testing.T) {
	config := bag.Base()
	bag.StorePut(config.CurrentLayer(), Region("us-east-1"))
	config.AddLayer("empty")
	config.AddLayer("operation")
	bag.StorePut(config.CurrentLayer(), Region("eu-west-1"))

	trace := bag.TraceOf[Region](config)
	assert.Equal(t, "bag_test.Region", trace.Type)
	assert.Equal(t, "replace", trace.Policy)
	require.Len(t, trace.Layers, 3)

	assert.Equal(t, bag.Provenance{Layer: "operation", Index: 0, State: "set", Value: Region("eu-west-1")}, trace.Layers[0])
	assert.Equal(t, bag.Provenance{Layer: "empty", Index: 1, Frozen: true, State: "absent"}, trace.Layers[1])
	assert.Equal(t, bag.Provenance{Layer: bag.InterceptorState, Index: 2, Frozen: true, State: "set", Value: Region("us-east-1"), Shadowed: true}, trace.Layers[2])

	visible := trace.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "operation", visible[0].Layer)
}

func TestTraceAllStopsAtClear(t *testing.T) {
	config := bag.Base()
	bag.StoreAppend(config.CurrentLayer(), Tag("hidden"))
	config.AddLayer("clear")
	bag.Clear[Tag](config.CurrentLayer())
	config.AddLayer("top")
	bag.StoreAppend(config.CurrentLayer(), Tag("top"))

	trace := bag.TraceAll[Tag](config)
	assert.Equal(t, "append", trace.Policy)
	visible := trace.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "top", visible[0].Layer)
	assert.Equal(t, "clear", visible[1].Layer)
	assert.Equal(t, "unset", visible[1].State)
	assert.True(t, trace.Layers[2].Shadowed)
}

func TestTraceMerged(t *testing.T) {
	config := bag.Base()
	bag.StoreMerge(config.CurrentLayer(), RetryConfig{Backoff: ptr("fixed")})
	config.AddLayer("operation")
	bag.StoreMerge(config.CurrentLayer(), RetryConfig{MaxAttempts: ptr(4)})

	trace := bag.TraceMerged[RetryConfig](config)
	assert.Equal(t, "merge", trace.Policy)
	assert.Len(t, trace.Visible(), 2)
}

func TestTraceJSONRoundTrip(t *testing.T) {
	config := bag.Base()
	bag.StorePut(config.CurrentLayer(), Region("us-east-1"))
	config.AddLayer("attempt")
	bag.Unset[Region](config.CurrentLayer())

	payload, err := bag.TraceOf[Region](config).ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "bag_test.Region",
		"policy": "replace",
		"layers": [
			{"layer": "attempt", "index": 0, "frozen": false, "state": "unset", "reason": "bag_test.Region"},
			{"layer": "interceptor_state", "index": 1, "frozen": true, "state": "set", "value": "us-east-1", "shadowed": true}
		]
	}`, string(payload))

	decoded, err := bag.TraceFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, "bag_test.Region", decoded.Type)
	require.Len(t, decoded.Layers, 2)
	assert.Equal(t, "us-east-1", decoded.Layers[1].Value)
	assert.True(t, decoded.Layers[1].Shadowed)

	_, err = bag.TraceFromJSON([]byte("{"))
	assert.Error(t, err)
}
