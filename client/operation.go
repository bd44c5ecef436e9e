package client

import (
	"github.com/borderlesshq/apollograph/cache"
)

type OperationKind string

const (
	Query        OperationKind = "query"
	Mutation     OperationKind = "mutation"
	Subscription OperationKind = "subscription"
)

// SubscriptionRootKey is the cache key subscriptions normalize under.
const SubscriptionRootKey cache.Key = "SUBSCRIPTION_ROOT"

// Operation is the contract generated operation types satisfy.
type Operation interface {
	Kind() OperationKind
	Name() string
	Document() string
	Variables() map[string]interface{}
	RootSelectionSet() cache.SelectionSet
}

// RootCacheKey returns the cache key an operation's payload roots at.
func RootCacheKey(op Operation) cache.Key {
	switch op.Kind() {
	case Mutation:
		return cache.MutationRootKey
	case Subscription:
		return SubscriptionRootKey
	default:
		return cache.QueryRootKey
	}
}

// OperationDef is a plain-value Operation, used by hand-written operations
// and throughout the tests.
type OperationDef struct {
	OperationKind OperationKind
	OperationName string
	DocumentText  string
	Vars          map[string]interface{}
	SelectionSet  cache.SelectionSet
}

var _ Operation = OperationDef{}

func (o OperationDef) Kind() OperationKind {
	if o.OperationKind == "" {
		return Query
	}
	return o.OperationKind
}

func (o OperationDef) Name() string                        { return o.OperationName }
func (o OperationDef) Document() string                    { return o.DocumentText }
func (o OperationDef) Variables() map[string]interface{}   { return o.Vars }
func (o OperationDef) RootSelectionSet() cache.SelectionSet { return o.SelectionSet }
