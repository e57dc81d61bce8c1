package config

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"goeasy/errors"
)

var durationPattern = regexp.MustCompile(`^([0-9]+)(s|mi?n|h|d|w)?$`)

var durationUnits = map[string]int64{
	"":    1,
	"s":   1,
	"mn":  60,
	"min": 60,
	"h":   60 * 60,
	"d":   24 * 60 * 60,
	"w":   7 * 24 * 60 * 60,
}

// ToSeconds 将 "2s"、"3mn"、"5min"、"24h"、"2d"、"1w" 转换为秒数，纯数字按秒处理
func ToSeconds(duration string) (int64, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(duration))
	if m == nil {
		return 0, errors.Newf(errors.ErrCodeConfiguration, "invalid duration: %q", duration)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, errors.WrapError(err, errors.ErrCodeConfiguration, "invalid duration: "+duration)
	}
	return n * durationUnits[m[2]], nil
}

// ToDuration 同 ToSeconds，返回 time.Duration
func ToDuration(duration string) (time.Duration, error) {
	n, err := ToSeconds(duration)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
