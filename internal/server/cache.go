package server

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/veloportal/internal/portal"
)

// classificationCache holds rendered stage classifications for a short TTL
// so repeated reads of an idle stage skip recomputation. Any mutation
// touching a stage flushes its entry, so readers never see a mix of pre-
// and post-mutation results.
type classificationCache struct {
	cache *cache.Cache
}

func newClassificationCache(ttl time.Duration) *classificationCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &classificationCache{cache: cache.New(ttl, 2*ttl)}
}

func stageKey(stageID int) string {
	return strconv.Itoa(stageID)
}

func (c *classificationCache) get(stageID int) (*portal.StageClassification, bool) {
	if v, found := c.cache.Get(stageKey(stageID)); found {
		if cls, ok := v.(*portal.StageClassification); ok {
			return cls, true
		}
	}
	return nil, false
}

func (c *classificationCache) put(stageID int, cls *portal.StageClassification) {
	c.cache.SetDefault(stageKey(stageID), cls)
}

func (c *classificationCache) flush(stageID int) {
	c.cache.Delete(stageKey(stageID))
}
