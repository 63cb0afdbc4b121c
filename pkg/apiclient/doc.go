// Package apiclient builds and executes requests against the content backend.
//
// A call is described by an immutable [Request] and executed by a [Client]:
//
//	q := apiclient.NewQuery().Add("page", 1).Add("limit", 12).Add("status", nil)
//	req, err := apiclient.NewRequest(http.MethodGet, "/api/admin/products",
//	    apiclient.WithQuery(q),
//	    apiclient.WithCredential(session.FromContext(ctx)),
//	)
//	page, err := apiclient.Call[backend.Page[backend.Product]](ctx, client, req)
//
// # Request rules
//
//   - nil query values are dropped and slices expand into repeated keys;
//   - raw bodies (readers, bytes, forms) pass through unchanged, everything
//     else is JSON encoded and gets Content-Type application/json unless a
//     content type was set;
//   - Accept: application/json is always sent.
//
// # Response rules
//
// 204 responses, empty bodies and requests built with [WithoutResponseBody]
// yield the empty result. Any non-2xx status returns *[Error] whose message
// comes from the payload's "message" field, then the status text, then
// "API request failed". When no response arrives at all, including a timeout,
// the call returns *[NetworkError] and no status.
//
// The client never retries. Retrying is the cache layer's job.
package apiclient
