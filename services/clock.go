package services

import "time"

// Clock is the injectable time source. Handlers and policies take a
// Clock instead of calling time.Now so tests can pin the current date.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func NewClock() Clock { return realClock{} }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
