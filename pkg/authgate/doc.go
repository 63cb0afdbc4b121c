// Package authgate guards protected pages with the "who am I" read.
//
// A Gate reads the identity through an swr.Store and moves between Checking,
// Authenticated and Unauthenticated. The login surface is Skipped and never
// issues the read.
//
// A Coordinator owns the redirect to the login surface for one session scope.
// It is attached to the store, so an auth-denied failure of any read, not
// only the identity read, triggers it. Whatever the number of concurrent
// failures, it navigates once:
//
//	coord := authgate.NewCoordinator(nav)
//	detach := coord.Attach(store)
//	defer detach()
//
//	gate := authgate.New(store, coord, func(ctx context.Context) (*backend.User, error) {
//		return api.Auth.Me(ctx, cred)
//	})
//	gate.Mount(ctx, r.URL.Path)
//	defer gate.Unmount()
//
//	if status, _ := gate.Wait(ctx); status == authgate.Authenticated { ... }
//
// Server handlers use DeferredNavigator and answer with the recorded target;
// long-running clients navigate directly.
package authgate
