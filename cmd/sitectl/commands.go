package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/session"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

func cmdLogin(ctx context.Context, c *client, _ *flags, out io.Writer) error {
	user, err := c.login(ctx)
	if err != nil {
		return fmt.Errorf("login: %s", apiclient.Message(err, "login failed"))
	}
	_, err = fmt.Fprintf(out, "Signed in as %s (%s)\n", user.Email, user.Role)
	return err
}

func cmdMe(ctx context.Context, c *client, _ *flags, out io.Writer) error {
	user, err := c.principal(ctx, "/me")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\t%s\tsites: %s\n", user.Email, user.Role, strings.Join(user.SiteIDs, ","))
	return err
}

func cmdSites(ctx context.Context, c *client, _ *flags, out io.Writer) error {
	if _, err := c.principal(ctx, "/sites"); err != nil {
		return err
	}
	resp, err := swr.Load(ctx, c.store, backend.PathSites,
		func(ctx context.Context) (backend.Response[[]backend.Site], error) {
			return c.api.Admin.Sites.List(ctx, session.Ambient())
		})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tNAME\tTEMPLATE")
	for _, s := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Slug, s.Name, s.Template)
	}
	return tw.Flush()
}

// productsQuery builds the admin product filter from the flags.
func productsQuery(f *flags) *apiclient.Query {
	q := apiclient.QueryFromStruct(backend.ListQuery{Page: f.page, Limit: f.limit, Search: f.search})
	if f.site != "" {
		q.Set("siteId", f.site)
	}
	return q
}

func loadProducts(ctx context.Context, c *client, q *apiclient.Query) (backend.Page[backend.Product], error) {
	return swr.Load(ctx, c.store, swr.Key(backend.PathProducts, q), productsFetcher(c, q))
}

func productsFetcher(c *client, q *apiclient.Query) func(context.Context) (backend.Page[backend.Product], error) {
	return func(ctx context.Context) (backend.Page[backend.Product], error) {
		return c.api.Admin.Products.List(ctx, session.Ambient(), q)
	}
}

func cmdProducts(ctx context.Context, c *client, f *flags, out io.Writer) error {
	if _, err := c.principal(ctx, "/products"); err != nil {
		return err
	}
	page, err := loadProducts(ctx, c, productsQuery(f))
	if err != nil {
		return err
	}
	return printProducts(out, page)
}

func printProducts(out io.Writer, page backend.Page[backend.Product]) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSITE")
	for _, p := range page.Data {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Price, p.SiteID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d of %d (%d total)\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return err
}

// cmdWatch subscribes to the product list and prints every new state.
// The list is refreshed every interval and after the backend comes back
// online.
func cmdWatch(ctx context.Context, c *client, f *flags, out io.Writer) error {
	if _, err := c.principal(ctx, "/watch"); err != nil {
		return err
	}
	if err := c.monitor.Start(ctx); err != nil {
		return err
	}

	q := productsQuery(f)
	key := swr.Key(backend.PathProducts, q)
	sub := swr.SubscribeTo(c.store, key, productsFetcher(c, q))
	defer sub.Close()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.store.Invalidate(key)
		case st, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			if st.IsLoading {
				continue
			}
			if st.Err != nil {
				if apiclient.IsUnauthorized(st.Err) {
					return ErrNotSignedIn
				}
				c.log.Warn("refresh failed", slog.String("kind", apiclient.Kind(st.Err).String()), slog.Any("error", st.Err))
				continue
			}
			page, ok := swr.Value[backend.Page[backend.Product]](st)
			if !ok {
				continue
			}
			fmt.Fprintf(out, "-- %s\n", time.Now().Format(time.TimeOnly))
			if err := printProducts(out, page); err != nil {
				return err
			}
			printed++
			if f.updates > 0 && printed >= f.updates {
				return nil
			}
		}
	}
}
