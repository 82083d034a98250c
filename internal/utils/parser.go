package utils

import (
	"fmt"
	"sort"

	"gorm.io/datatypes"
)

// JSONMapToStrings converts a datatypes.JSONMap to map[string]string, dropping
// non-string and empty values.
func JSONMapToStrings(data datatypes.JSONMap) map[string]string {
	result := make(map[string]string, len(data))
	for k, v := range data {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		result[k] = s
	}
	return result
}

// MergeStringMaps returns base overlaid with override.
func MergeStringMaps(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		result[k] = v
	}
	return result
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HumanSize renders a byte count as B, KB or MB.
func HumanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
