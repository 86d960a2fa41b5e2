package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/conorfennell/studydeck/internal/domain"
)

// BatchResult aggregates the per-entity outcomes of a batch mutation.
// Succeeded keeps the order the ids were given in.
type BatchResult struct {
	Verb      string
	Total     int
	Succeeded []string
	Failed    map[string]error
}

// OK reports whether every member succeeded.
func (r BatchResult) OK() bool { return len(r.Failed) == 0 }

// Summary renders the result as "N of M <verb>".
func (r BatchResult) Summary() string {
	return fmt.Sprintf("%d of %d %s", len(r.Succeeded), r.Total, r.Verb)
}

// Err returns nil when every member succeeded, otherwise a partial failure
// error carrying the summary.
func (r BatchResult) Err() error {
	if r.OK() {
		return nil
	}
	// A single shared kind is kept; mixed failures are reported as internal.
	kind := domain.ErrorKind(-1)
	for _, err := range r.Failed {
		k := domain.KindOf(err)
		if kind != -1 && kind != k {
			kind = domain.KindInternal
			break
		}
		kind = k
	}
	return &domain.Error{Kind: kind, Message: fmt.Sprintf("partially failed: %s", r.Summary())}
}

// DeleteMany deletes every id concurrently, each under the Delete contract,
// and reports once all of them have resolved.
func (c *Collection[T]) DeleteMany(ctx context.Context, ids []string, remove func(context.Context, string) error) BatchResult {
	return c.batch(ids, "deleted", func(id string) error {
		return c.Delete(ctx, id, remove)
	})
}

// UpdateMany updates every id concurrently, each under the Update contract.
// verb names the operation in the summary, e.g. "moved".
func (c *Collection[T]) UpdateMany(ctx context.Context, verb string, ids []string, apply func(T) T, update func(context.Context, T) (T, error)) BatchResult {
	return c.batch(ids, verb, func(id string) error {
		_, err := c.Update(ctx, id, apply, update)
		return err
	})
}

func (c *Collection[T]) batch(ids []string, verb string, do func(id string) error) BatchResult {
	ids = unique(ids)
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = do(id)
		}(i, id)
	}
	wg.Wait()

	res := BatchResult{Verb: verb, Total: len(ids), Failed: make(map[string]error)}
	for i, id := range ids {
		if errs[i] != nil {
			res.Failed[id] = errs[i]
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
