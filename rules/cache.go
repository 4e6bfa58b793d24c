package rules

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache stores compiled expression programs keyed by expression strings.
// Implementations must be safe for concurrent use.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruProgramCache struct {
	programs *lru.Cache[string, any]
}

// NewLRUProgramCache returns a ProgramCache that keeps the size most recently
// used programs.
func NewLRUProgramCache(size int) (ProgramCache, error) {
	programs, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("rules: program cache: %w", err)
	}
	return &lruProgramCache{programs: programs}, nil
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.programs.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.programs.Add(key, value)
}

func cacheKey(engine, expression string) string {
	return engine + ":" + expression
}
