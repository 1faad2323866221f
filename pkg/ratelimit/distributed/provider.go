package distributed

import (
	"github.com/samber/do"
)

const iocPrefix = "_ringlimit_:"

// Provide registers l in injector under its key. A nil injector uses
// do.DefaultInjector.
func Provide(injector *do.Injector, l *Limiter) {
	do.ProvideNamedValue(injector, iocPrefix+l.Key(), l)
}

// Exist reports whether a limiter for key has been provided.
func Exist(injector *do.Injector, key string) bool {
	_, err := do.InvokeNamed[*Limiter](injector, iocPrefix+key)
	return err == nil
}

// Pick returns the limiter registered for key.
func Pick(injector *do.Injector, key string) (*Limiter, error) {
	return do.InvokeNamed[*Limiter](injector, iocPrefix+key)
}

// MustPick is like Pick but panics when no limiter is registered for key.
func MustPick(injector *do.Injector, key string) *Limiter {
	return do.MustInvokeNamed[*Limiter](injector, iocPrefix+key)
}
