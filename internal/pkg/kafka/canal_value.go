package kafka

import (
	"fmt"
	"strconv"
	"time"
)

// Canal 将所有列值序列化为字符串，这里统一做宽松转换

func StrToString(val interface{}) string {
	if val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

func StrToUint64(val interface{}) uint64 {
	s := StrToString(val)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func StrToInt(val interface{}) int {
	s := StrToString(val)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func StrToFloat64(val interface{}) float64 {
	s := StrToString(val)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// StrToDateTime Canal 输出的 datetime 格式固定为 "2006-01-02 15:04:05"
func StrToDateTime(val interface{}) time.Time {
	s := StrToString(val)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
