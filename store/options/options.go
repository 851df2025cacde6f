/*
Package options holds option types shared by the store interface and its
drivers.
*/
package options

import "time"

// Put controls a single Put call.
type Put struct {
	Expire time.Duration
}

// PutOption mutates Put options.
type PutOption func(*Put)

// WithExpire sets a TTL on the written key.
func WithExpire(ttl time.Duration) PutOption {
	return func(o *Put) {
		o.Expire = ttl
	}
}

// ApplyPut folds the options into a Put value.
func ApplyPut(opts []PutOption) Put {
	var options Put
	for _, opt := range opts {
		opt(&options)
	}

	return options
}
