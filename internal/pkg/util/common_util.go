package util

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeTags 去空白、去空串、去重，保留原始顺序
func NormalizeTags(raw []string) []string {
	tagSet := make(map[string]struct{})
	tags := make([]string, 0, len(raw))

	for _, t := range raw {
		tagName := strings.TrimSpace(t)
		if tagName == "" {
			continue
		}
		if _, exists := tagSet[tagName]; exists {
			continue
		}
		tagSet[tagName] = struct{}{}
		tags = append(tags, tagName)
	}

	return tags
}

// ValidCoordinate 校验经纬度是否合法
func ValidCoordinate(longitude, latitude float64) bool {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return false
	}
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return false
	}
	return longitude >= -180 && longitude <= 180 && latitude >= -90 && latitude <= 90
}

// StrSliceToUInt64Slice 将字符串切片转换为 uint64 切片
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	result := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
