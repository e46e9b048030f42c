package utils

import (
	"sort"
	"strings"
)

type FlagBits interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// FlagStringMapping converts registered bit flags into pipe-delimited strings.
type FlagStringMapping[T FlagBits] struct {
	names map[T]string
}

func NewFlagStringMapping[T FlagBits]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(value T, name string) {
	m.names[value] = name
}

func (m FlagStringMapping[T]) FlagsToString(value T) string {
	var flags []string
	for bit, name := range m.names {
		if value&bit != 0 {
			flags = append(flags, name)
		}
	}
	sort.Strings(flags)
	return strings.Join(flags, "|")
}
