package console

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
)

// maxActionBody caps action request bodies.
const maxActionBody = 1 << 20

// ActionResult is the JSON reply of a server action.
type ActionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Fields lists rejected inputs when validation failed before the call.
	Fields []FieldMessage `json:"fields,omitempty"`
}

// FieldMessage is one rejected input.
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Fail builds a failed result. The message is the backend's when it sent
// one, otherwise fallback.
func Fail(err error, fallback string) ActionResult {
	res := ActionResult{Error: apiclient.Message(err, fallback)}
	var verr *backend.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			res.Fields = append(res.Fields, FieldMessage{Field: f.Field, Message: f.Message()})
		}
	}
	return res
}

// reply writes an action result. A session that expired mid-action is
// handed to the error handler, which sends the browser to the login page.
func reply[T any](c internal.Context, r apiclient.Result[T], fallback string, keep bool) error {
	if !r.Ok() {
		if r.Kind() == apiclient.KindUnauthorized {
			return r.Err
		}
		if r.Kind() == apiclient.KindNetwork || r.Kind() == apiclient.KindUnknown {
			c.LogWarn("action failed", slog.String("kind", r.Kind().String()), slog.Any("error", r.Err))
		}
		return c.JSON(http.StatusOK, Fail(r.Err, fallback))
	}
	res := ActionResult{Success: true}
	if keep {
		res.Data = r.Value
	}
	return c.JSON(http.StatusOK, res)
}

// decode reads a JSON action body into v.
func decode(c internal.Context, v any) bool {
	body := io.LimitReader(c.Request().Body, maxActionBody)
	return json.NewDecoder(body).Decode(v) == nil
}

func badBody(c internal.Context) error {
	return c.JSON(http.StatusBadRequest, ActionResult{Error: "Invalid request body"})
}

func createAction[T, C, U any](c internal.Context, con *Console, col collection[T, C, U]) error {
	var in C
	if !decode(c, &in) {
		return badBody(c)
	}
	resp, err := col.res.Create(c, c.Credential(), in)
	if err == nil {
		con.invalidate(c, col.res.Path(), col.siteOfPtr(resp.Data))
	}
	return reply(c, apiclient.Capture(resp.Data, err), "Failed to create "+col.noun, true)
}

func updateAction[T, C, U any](c internal.Context, con *Console, col collection[T, C, U]) error {
	var in U
	if !decode(c, &in) {
		return badBody(c)
	}
	resp, err := col.res.Update(c, c.Credential(), c.Param("id"), in)
	if err == nil {
		con.invalidate(c, col.res.Path(), col.siteOfPtr(resp.Data))
	}
	return reply(c, apiclient.Capture(resp.Data, err), "Failed to update "+col.noun, true)
}

func deleteAction[T, C, U any](c internal.Context, con *Console, col collection[T, C, U]) error {
	err := col.res.Remove(c, c.Credential(), c.Param("id"))
	if err == nil {
		// The deleted record's site is unknown here.
		con.invalidate(c, col.res.Path(), nil)
	}
	return reply(c, apiclient.Capture(struct{}{}, err), "Failed to delete "+col.noun, false)
}

// siteOfPtr returns the owning site id of item, or nil when the resource
// has no public side.
func (col collection[T, C, U]) siteOfPtr(item T) *string {
	if col.siteOf == nil {
		return nil
	}
	id := col.siteOf(item)
	return &id
}

// invalidate drops cached reads made stale by a mutation: the admin
// collection in the request store, and the public reads of the owning site
// in the process-wide store. siteID nil drops every site's public reads.
func (con *Console) invalidate(c internal.Context, adminPath string, siteID *string) {
	c.Store().InvalidatePrefix(adminPath)
	if con.public == nil {
		return
	}
	prefix := backend.PublicSitesPath
	if siteID != nil && *siteID != "" {
		prefix = backend.PublicPath(*siteID, "")
	}
	n := con.public.InvalidatePrefix(prefix)
	c.LogDebug("public cache invalidated", slog.String("prefix", prefix), slog.Int("entries", n))
}
