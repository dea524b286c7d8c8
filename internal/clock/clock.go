// Package clock отделяет бизнес-логику от time.Now, чтобы сроки заявок
// и окна расписания проверялись в тестах детерминированно.
package clock

import (
	"sync"
	"time"
)

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Real возвращает системные часы в UTC.
func Real() Clock { return realClock{} }

// Fixed - часы для тестов, время меняется только через Set и Advance.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed создает часы, остановленные на моменте t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance сдвигает часы вперед на d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
