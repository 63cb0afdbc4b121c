package console

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// siteRoutes registers the site pages and actions. Sites differ from the
// other collections: the list is not paginated, and mutations also drop
// slug resolutions.
func (con *Console) siteRoutes(r internal.Router) {
	r.Route("/sites", func(r internal.Router) {
		r.GET("/", con.listSites)
		r.GET("/{id}", con.showSite)
		r.POST("/", con.createSite)
		r.PATCH("/{id}", con.updateSite)
		r.DELETE("/{id}", con.deleteSite)
	})
}

func (con *Console) loadSites(c internal.Context) ([]backend.Site, error) {
	resp, err := swr.Load(c, c.Store(), backend.PathSites,
		func(ctx context.Context) (backend.Response[[]backend.Site], error) {
			return con.api.Admin.Sites.List(ctx, c.Credential())
		})
	return resp.Data, err
}

func (con *Console) listSites(c internal.Context) error {
	sites, err := con.loadSites(c)
	if err != nil {
		return err
	}
	rows := make([]row, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, row{ID: s.ID, Label: s.Name + " (" + s.Slug + ")"})
	}
	v := tableData{Title: "Sites", Base: DefaultBasePath + "/sites", Rows: rows}
	return c.RenderPartial(http.StatusOK, shell(principal(c), "Sites", tableView(v)), tableView(v))
}

func (con *Console) showSite(c internal.Context) error {
	id := c.Param("id")
	s, err := swr.Load(c, c.Store(), con.api.Admin.Sites.DetailPath(id),
		func(ctx context.Context) (backend.Site, error) {
			return con.api.Admin.Sites.Detail(ctx, c.Credential(), id)
		})
	if err != nil {
		return err
	}
	if u := principal(c); u != nil && !u.CanAccess(s.ID) {
		return internal.ErrForbidden("You cannot manage this site")
	}
	return c.Render(http.StatusOK, shell(principal(c), s.Name, recordView("Sites", DefaultBasePath+"/sites", s)))
}

func (con *Console) createSite(c internal.Context) error {
	var in backend.CreateSite
	if !decode(c, &in) {
		return badBody(c)
	}
	resp, err := con.api.Admin.Sites.Create(c, c.Credential(), in)
	if err == nil {
		// A slug that was unknown until now may be cached as missing.
		con.forgetSite(c, resp.Data.Slug)
		con.invalidate(c, backend.PathSites, &resp.Data.ID)
	}
	return reply(c, apiclient.Capture(resp.Data, err), "Failed to create site", true)
}

func (con *Console) updateSite(c internal.Context) error {
	var in backend.UpdateSite
	if !decode(c, &in) {
		return badBody(c)
	}
	id := c.Param("id")
	resp, err := con.api.Admin.Sites.Update(c, c.Credential(), id, in)
	if err == nil {
		// The previous slug is not known here.
		con.purgeSites(c)
		con.invalidate(c, backend.PathSites, &id)
	}
	return reply(c, apiclient.Capture(resp.Data, err), "Failed to update site", true)
}

func (con *Console) deleteSite(c internal.Context) error {
	id := c.Param("id")
	err := con.api.Admin.Sites.Remove(c, c.Credential(), id)
	if err == nil {
		con.purgeSites(c)
		con.invalidate(c, backend.PathSites, &id)
	}
	return reply(c, apiclient.Capture(struct{}{}, err), "Failed to delete site", false)
}

func (con *Console) forgetSite(c internal.Context, slug string) {
	if con.sites == nil || slug == "" {
		return
	}
	if err := con.sites.Forget(c, slug); err != nil {
		c.LogWarn("site cache forget failed", slog.String("slug", slug), slog.Any("error", err))
	}
}

func (con *Console) purgeSites(c internal.Context) {
	if con.sites == nil {
		return
	}
	if err := con.sites.Purge(c); err != nil {
		c.LogWarn("site cache purge failed", slog.Any("error", err))
	}
}
