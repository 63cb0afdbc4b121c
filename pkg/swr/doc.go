// Package swr is a stale-while-revalidate cache for backend reads.
//
// A Store keeps one entry per canonical key (see Key). Reading a key that was
// fetched within the dedup window returns the cached result; reading an older
// key returns the stale result and revalidates in the background; reading a
// key whose fetch is in flight joins that fetch. At most one fetch per key
// runs at a time.
//
// # Reading
//
//	st := store.Read(ctx, swr.Key("/api/admin/sites", nil), fetchSites)
//	if st.IsLoading { ... }
//
// Fetch blocks until a value exists and is meant for server rendering:
//
//	user, err := swr.Load(ctx, store, "/auth/me", func(ctx context.Context) (*backend.User, error) {
//	    return api.Auth.Me(ctx, cred)
//	})
//
// Subscribe attaches a long-lived reader. Subscriptions keep failing keys
// retried and receive every state change:
//
//	sub := store.Subscribe(key, fetcher, swr.WithoutRetry())
//	defer sub.Close()
//	for st := range sub.Updates() { ... }
//
// # Mutations
//
// Mutate writes a value with no network call. Invalidate and InvalidatePrefix
// expire keys: subscribed keys are refetched, others are dropped.
//
// # Auth-denied failures
//
// A fetch that fails with apiclient.ErrUnauthorized is never retried. The
// store publishes an UnauthorizedEvent to every handler registered with
// OnUnauthorized; authgate.Coordinator is the usual handler.
//
// # Connectivity
//
// Monitor probes the backend on a cron schedule and calls Store.Reconnected
// when it becomes reachable again.
package swr
