package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TestKey returns the cache key for a test definition.
func (r *CacheKeyStruct) TestKey(testID int64) string {
	return fmt.Sprintf("catalog:test:%d", testID)
}

// QuestionKey returns the cache key for a question definition.
func (r *CacheKeyStruct) QuestionKey(questionID int64) string {
	return fmt.Sprintf("catalog:question:%d", questionID)
}

var CacheKey = NewCacheKeyStruct()
