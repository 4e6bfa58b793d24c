package bag_test

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/goliatone/go-bag"
)

func TestSharedLayerConcurrentReaders(t *testing.T) {
	defer goleak.VerifyNone(t)

	defaults := bag.NewLayer("client-defaults")
	bag.StorePut(defaults, Region("us-east-1"))
	bag.StoreAppend(defaults, Tag("client"))
	shared := defaults.Freeze()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := bag.Base().PushSharedLayer(shared)
				op := b.With(fmt.Sprintf("op-%d-%d", i, j), func(l *bag.Layer) {
					bag.StoreAppend(l, Tag("operation"))
				})
				region, ok := bag.Load[Region](op)
				if !ok || region != "us-east-1" {
					t.Errorf("unexpected region %q", region)
				}
				tags := slices.Collect(bag.LoadAll[Tag](op))
				if len(tags) != 2 || tags[0] != "operation" || tags[1] != "client" {
					t.Errorf("unexpected tags %v", tags)
				}
				op.Release()
				b.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, shared.Owners())
	reclaimed, ok := shared.TryReclaim()
	assert.True(t, ok)
	assert.Same(t, defaults, reclaimed)
}
