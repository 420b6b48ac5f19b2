// Package parameters reads the key=value list that follows an agent name in a
// configuration string, e.g. "iterations=500,mode=time,verbose".
package parameters

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

type Params map[string]string

// Value is any type a parameter can be read as.
type Value interface {
	bool | int | uint64 | float64 | string
}

// NewFromConfigString splits config on ',' and each part on its first '='. A bare key
// maps to "".
func NewFromConfigString(config string) Params {
	params := make(Params)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		params[key] = value
	}
	return params
}

// GetParamOr reads key as a T, or returns defaultValue when key is absent. Empty
// numeric values also keep the default; an empty bool is true.
func GetParamOr[T Value](params Params, key string, defaultValue T) (T, error) {
	raw, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	value, err := parse(raw, defaultValue)
	if err != nil {
		return defaultValue, errors.WithMessagef(err, "parameter %s=%q", key, raw)
	}
	return value, nil
}

// PopParamOr is GetParamOr that also consumes key, unless it failed to parse.
func PopParamOr[T Value](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err == nil {
		delete(params, key)
	}
	return value, err
}

func parse[T Value](raw string, defaultValue T) (T, error) {
	var parsed any
	var err error
	switch any(defaultValue).(type) {
	case string:
		return any(raw).(T), nil
	case bool:
		switch strings.ToLower(raw) {
		case "", "true", "1":
			parsed = true
		case "false", "0":
			parsed = false
		default:
			err = errors.New("not a bool")
		}
	case int:
		if raw == "" {
			return defaultValue, nil
		}
		parsed, err = strconv.Atoi(raw)
	case uint64:
		if raw == "" {
			return defaultValue, nil
		}
		parsed, err = strconv.ParseUint(raw, 10, 64)
	case float64:
		if raw == "" {
			return defaultValue, nil
		}
		parsed, err = strconv.ParseFloat(raw, 64)
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse as %T", defaultValue)
	}
	return parsed.(T), nil
}

// CheckEmpty fails with the sorted list of keys nobody consumed.
func CheckEmpty(params Params) error {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return errors.Errorf("unknown parameters %q", keys)
}
