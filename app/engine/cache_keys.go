package engine

import (
	"encoding/hex"
	"strings"

	"github.com/minio/highwayhash"
)

// cacheHashKey is the fixed HighwayHash key for cache key digests. The hash
// only needs to be collision-resistant across query shapes, not secret.
var cacheHashKey = []byte("sweepboard.results.cache.key.v1!")

// BuildCacheKey creates a cache key from the snapshot token and the pipeline
// stages. The raw key grows with the filter rule set, so it is digested to a
// fixed width before use.
func BuildCacheKey(snapshotToken string, stages []PipelineStage) string {
	parts := make([]string, 0, len(stages)+1)
	parts = append(parts, "snap:"+snapshotToken)
	for _, stage := range stages {
		parts = append(parts, stage.CacheKey())
	}
	raw := strings.Join(parts, "|")

	sum := highwayhash.Sum128([]byte(raw), cacheHashKey)
	return hex.EncodeToString(sum[:])
}
