package users

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ayush/user-management/web/internal/auth"
	"github.com/ayush/user-management/web/internal/gateway"
	"github.com/ayush/user-management/web/internal/models"
	"github.com/ayush/user-management/web/internal/web"
)

// Directory is the part of the API client the users view reads from.
type Directory interface {
	ListUsers(ctx context.Context, sess gateway.Session) ([]models.UserSummary, error)
	GetUserProfile(ctx context.Context, sess gateway.Session, userID string) (*models.UserDetail, error)
}

// Handler serves the authenticated users listing.
type Handler struct {
	api    Directory
	views  *web.Renderer
	logger *slog.Logger
}

func NewHandler(api Directory, views *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{api: api, views: views, logger: logger}
}

type row struct {
	ID      string
	Name    string
	ViewURL string
}

type homeView struct {
	FilterID    string
	FilterName  string
	Sort        string
	Dir         string
	Rows        []row
	Page        Page
	PrevURL     string
	NextURL     string
	SortIDURL   string
	SortNameURL string
	ShowModal   bool
	Selected    *models.UserDetail
	CloseURL    string
}

// Home lists users with filtering, sorting and pagination. A "view" query
// parameter opens the details modal for that user; it is fetched alongside the
// list and a failed fetch closes the modal again.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	q := r.URL.Query()
	viewID := q.Get("view")

	var (
		list      []models.UserSummary
		listErr   error
		detail    *models.UserDetail
		detailErr error
		g         errgroup.Group
	)
	g.Go(func() error {
		list, listErr = h.api.ListUsers(ctx, sess)
		return nil
	})
	if viewID != "" {
		g.Go(func() error {
			detail, detailErr = h.api.GetUserProfile(ctx, sess, viewID)
			return nil
		})
	}
	_ = g.Wait()

	if viewID != "" && detailErr != nil {
		h.logger.Error("fetch user details", "user_id", viewID, "error", detailErr)
		if err := sess.SetFlash(ctx, auth.Failure("Failed to fetch user details")); err != nil {
			h.logger.Error("set flash", "error", err)
		}
		http.Redirect(w, r, listURL(q, map[string]string{"view": ""}), http.StatusSeeOther)
		return
	}

	page := web.Page{Title: "Users", Authenticated: true, Flash: sess.PopFlash(ctx)}
	if listErr != nil {
		h.logger.Error("fetch users list", "error", listErr)
		if page.Flash != nil {
			h.logger.Warn("pending notice replaced by list failure", "kind", page.Flash.Kind, "message", page.Flash.Message)
		}
		page.Flash = &models.Flash{Kind: "error", Message: "Failed to fetch users list"}
		list = nil
	}

	sortKey, dir := q.Get("sort"), q.Get("dir")
	if dir != "desc" {
		dir = "asc"
	}
	filtered := Sort(Filter(list, q.Get("id"), q.Get("name")), sortKey, dir == "desc")
	pageNum, _ := strconv.Atoi(q.Get("page"))
	visible, info := Paginate(filtered, pageNum, PageSize)

	view := homeView{
		FilterID:    q.Get("id"),
		FilterName:  q.Get("name"),
		Sort:        sortKey,
		Dir:         dir,
		Page:        info,
		Rows:        make([]row, 0, len(visible)),
		SortIDURL:   listURL(q, sortParams(sortKey, dir, "id")),
		SortNameURL: listURL(q, sortParams(sortKey, dir, "name")),
		ShowModal:   viewID != "",
		Selected:    detail,
		CloseURL:    listURL(q, map[string]string{"view": ""}),
	}
	for _, u := range visible {
		rv := row{ID: u.ID, Name: u.Name}
		if u.ID != "" {
			rv.ViewURL = listURL(q, map[string]string{"view": u.ID})
		}
		view.Rows = append(view.Rows, rv)
	}
	if info.HasPrev() {
		view.PrevURL = listURL(q, map[string]string{"page": strconv.Itoa(info.Number - 1), "view": ""})
	}
	if info.HasNext() {
		view.NextURL = listURL(q, map[string]string{"page": strconv.Itoa(info.Number + 1), "view": ""})
	}
	page.Data = view
	h.views.Render(w, http.StatusOK, "home", page)
}

// sortParams toggles direction when key is already the active sort column.
func sortParams(current, dir, key string) map[string]string {
	next := "asc"
	if current == key && dir == "asc" {
		next = "desc"
	}
	return map[string]string{"sort": key, "dir": next, "page": "", "view": ""}
}

// listURL rebuilds /home with q, applying overrides; an empty override removes
// the parameter.
func listURL(q url.Values, overrides map[string]string) string {
	out := url.Values{}
	for k, vs := range q {
		if len(vs) > 0 && vs[0] != "" {
			out.Set(k, vs[0])
		}
	}
	for k, v := range overrides {
		if v == "" {
			out.Del(k)
		} else {
			out.Set(k, v)
		}
	}
	if len(out) == 0 {
		return "/home"
	}
	return "/home?" + out.Encode()
}
