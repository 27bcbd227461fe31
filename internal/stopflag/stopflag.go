package stopflag

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrStopped - синхронизация остановлена по запросу администратора
var ErrStopped = errors.New("синхронизация остановлена по запросу")

// Flag - кооперативная остановка прогона синхронизации.
// Requested() сбрасывает флаг после первого положительного ответа.
type Flag struct {
	mu        sync.Mutex
	requested bool
}

func (f *Flag) Request() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = true
}

func (f *Flag) Requested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requested {
		f.requested = false
		return true
	}
	return false
}

func (f *Flag) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = false
}

var flagGlobal Flag

func GetFlag() *Flag {
	return &flagGlobal
}
