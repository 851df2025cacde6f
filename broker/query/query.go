/*
Package query holds the delivery types shared by the broker interface and its
backends.
*/
package query

// Handler consumes one raw message delivered on a subscription.
type Handler func(payload []byte)

// Subscription is an open subscription on one channel. Unsubscribe is
// idempotent and stops deliveries to the handler.
type Subscription interface {
	Unsubscribe() error
}
