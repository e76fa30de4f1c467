package treefs

import (
	"github.com/treefs-io/treefs/config"
	"github.com/treefs-io/treefs/filesystem"
	"github.com/treefs-io/treefs/transaction"
)

// New creates a tree given your config. A nil config uses the defaults.
func New(cfg *config.Config) *filesystem.Tree {
	return filesystem.New(cfg)
}

// NewTransaction creates an empty transaction in argument mode. Each
// request/response cycle gets its own instance.
func NewTransaction() *transaction.Trans {
	return transaction.New()
}
