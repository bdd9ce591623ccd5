package model

import (
	cacheRedis "pulse/cache/redis"
)

const cacheKeyPrefixAggregatedMarketingData = "marketing_data:aggregated"

func GetAggregatedMarketingDataCacheKey(source string) (*cacheRedis.Key, error) {
	return cacheRedis.NewKey(source, cacheKeyPrefixAggregatedMarketingData, "")
}
