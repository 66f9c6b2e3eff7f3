package ledmerge

import (
	"context"

	internalstore "github.com/goliatone/go-ledmerge/internal/store"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// Store is the ConfigurationStore returned by NewStore. It also lists the
// documents kept in its bolt library and releases the clients it opened.
type Store interface {
	store.ConfigurationStore
	Library(ctx context.Context) ([]string, error)
	Close() error
}

// NewStore constructs a store using the internal implementation while keeping
// the concrete type hidden from consumers. Local files are always available;
// the other location kinds are enabled through options.
func NewStore(options ...store.Option) Store {
	return internalstore.New(store.NewOptions(options...))
}
