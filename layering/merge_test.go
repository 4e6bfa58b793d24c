package layering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeouts struct {
	Connect *int
	Read    *int
}

type retryConfig struct {
	Enabled  *bool
	Attempts *int
	Timeouts *timeouts
	Headers  map[string]string
	Codes    []int
	origin   string
}

func ptr[T any](v T) *T { return &v }

func TestMergeLayers(t *testing.T) {
	tests := []struct {
		name   string
		layers []retryConfig
		expect retryConfig
	}{
		{
			name:   "single layer is copied",
			layers: []retryConfig{{Attempts: ptr(3)}},
			expect: retryConfig{Attempts: ptr(3)},
		},
		{
			name: "stronger pointer wins",
			layers: []retryConfig{
				{Attempts: ptr(5)},
				{Attempts: ptr(3), Enabled: ptr(true)},
			},
			expect: retryConfig{Attempts: ptr(5), Enabled: ptr(true)},
		},
		{
			name: "nested structs merge field by field",
			layers: []retryConfig{
				{Timeouts: &timeouts{Read: ptr(30)}},
				{Timeouts: &timeouts{Connect: ptr(5), Read: ptr(10)}},
			},
			expect: retryConfig{Timeouts: &timeouts{Connect: ptr(5), Read: ptr(30)}},
		},
		{
			name: "maps union with stronger keys winning",
			layers: []retryConfig{
				{Headers: map[string]string{"x-trace": "on"}},
				{Headers: map[string]string{"x-trace": "off", "x-region": "eu"}},
			},
			expect: retryConfig{Headers: map[string]string{"x-trace": "on", "x-region": "eu"}},
		},
		{
			name: "slices replace instead of concatenating",
			layers: []retryConfig{
				{Codes: []int{503}},
				{Codes: []int{500, 502}},
			},
			expect: retryConfig{Codes: []int{503}},
		},
		{
			name: "nil slice inherits",
			layers: []retryConfig{
				{},
				{Codes: []int{500}},
				{Codes: []int{400}},
			},
			expect: retryConfig{Codes: []int{500}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeLayers(tc.layers...)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	assert.Equal(t, sample{}, MergeLayers[sample]())
}

func TestMergeLayersDoesNotAlias(t *testing.T) {
	weak := retryConfig{Headers: map[string]string{"a": "1"}, Timeouts: &timeouts{Read: ptr(1)}}
	got := MergeLayers(retryConfig{}, weak)

	got.Headers["a"] = "2"
	*got.Timeouts.Read = 2

	assert.Equal(t, "1", weak.Headers["a"])
	assert.Equal(t, 1, *weak.Timeouts.Read)
}

func TestCloneKeepsUnexportedFields(t *testing.T) {
	src := retryConfig{Attempts: ptr(2), Codes: []int{1, 2}, origin: "file"}
	got := Clone(src)

	require.Equal(t, src, got)
	got.Codes[0] = 9
	*got.Attempts = 9
	assert.Equal(t, 1, src.Codes[0])
	assert.Equal(t, 2, *src.Attempts)
	assert.Equal(t, "file", got.origin)
}

func TestMergeLayersKeepsStrongUnexportedFields(t *testing.T) {
	got := MergeLayers(retryConfig{origin: "env"}, retryConfig{origin: "file", Attempts: ptr(1)})
	assert.Equal(t, "env", got.origin)
	assert.Equal(t, 1, *got.Attempts)
}

type endpointSet struct {
	Primary  any
	Backups  [2]*string
	Weights  map[string]*int
	Resolver any
}

func TestMergeLayersInterfacesAndArrays(t *testing.T) {
	weak := endpointSet{
		Primary:  timeouts{Connect: ptr(1), Read: ptr(2)},
		Backups:  [2]*string{ptr("a"), ptr("b")},
		Weights:  map[string]*int{"a": ptr(1)},
		Resolver: "dns",
	}
	strong := endpointSet{
		Primary:  timeouts{Read: ptr(20)},
		Backups:  [2]*string{nil, ptr("z")},
		Weights:  map[string]*int{"b": ptr(2)},
		Resolver: 42,
	}

	got := MergeLayers(strong, weak)

	assert.Equal(t, timeouts{Connect: ptr(1), Read: ptr(20)}, got.Primary)
	assert.Equal(t, "a", *got.Backups[0])
	assert.Equal(t, "z", *got.Backups[1])
	assert.Equal(t, 1, *got.Weights["a"])
	assert.Equal(t, 2, *got.Weights["b"])
	assert.Equal(t, 42, got.Resolver, "a different dynamic type replaces the weaker value")

	*got.Weights["a"] = 9
	*got.Backups[0] = "changed"
	assert.Equal(t, 1, *weak.Weights["a"])
	assert.Equal(t, "a", *weak.Backups[0])
}

func TestCloneMapOfSlices(t *testing.T) {
	src := map[string][]string{"hosts": {"a", "b"}}
	got := Clone(src)
	got["hosts"][0] = "z"
	assert.Equal(t, "a", src["hosts"][0])

	var empty map[string][]string
	assert.Nil(t, Clone(empty))
}
