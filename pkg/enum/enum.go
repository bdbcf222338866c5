// Package enum registers the values of string-like enum types so that they can
// be parsed back from their text form.
package enum

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/exp/slices"
)

var (
	registryMutex sync.RWMutex
	registry      = map[reflect.Type]map[string]any{}
)

// New registers value as a member of its type and returns it unchanged.
func New[T comparable](value T) T {
	t := reflect.TypeOf(value)

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, ok := registry[t]; !ok {
		registry[t] = map[string]any{}
	}
	registry[t][fmt.Sprint(value)] = value

	return value
}

func ToEnum[T comparable](s string) (T, error) {
	var defaultT T
	t := reflect.TypeOf(defaultT)

	registryMutex.RLock()
	defer registryMutex.RUnlock()

	values, ok := registry[t]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	v, ok := values[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return v.(T), nil
}

// Values returns the text form of every registered member of T, sorted.
func Values[T comparable]() []string {
	var defaultT T

	registryMutex.RLock()
	defer registryMutex.RUnlock()

	result := []string{}
	for s := range registry[reflect.TypeOf(defaultT)] {
		result = append(result, s)
	}
	slices.Sort(result)

	return result
}
