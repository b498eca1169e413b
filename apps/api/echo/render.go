package echoapi

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/dashboard"
	appfs "github.com/trezcool/college/fs"
)

const webTemplatesDir = "assets/templates/web"

var errTemplateNotFound = errors.New("template not found")

// pageData is what every web template receives.
type pageData struct {
	AppName     string
	Path        string
	Viewer      *dashboard.Viewer
	UnreadCount int
	Data        interface{}
}

func newPageData(ctx echo.Context, unread int, data interface{}) pageData {
	pd := pageData{
		Path:        ctx.Request().URL.Path,
		Viewer:      contextViewer(ctx),
		UnreadCount: unread,
		Data:        data,
	}
	if r, ok := ctx.Echo().Renderer.(*renderer); ok {
		pd.AppName = r.appName
	}
	return pd
}

// renderer renders the embedded web templates, each wrapped in `_base.gohtml`.
type renderer struct {
	appName   string
	loc       *time.Location
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(conf *core.Config) *renderer {
	r := &renderer{
		appName:   conf.AppName,
		loc:       conf.Location(),
		templates: make(map[string]*template.Template),
	}

	funcs := template.FuncMap{
		"date":     func(t time.Time) string { return t.Format("2006-01-02") },
		"datetime": func(t time.Time) string { return t.In(r.loc).Format("2006-01-02 15:04") },
		"num":      func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"lower":    strings.ToLower,
	}

	fps, err := fs.Glob(appfs.FS, path.Join(webTemplatesDir, "*.gohtml"))
	if err != nil {
		panic(errors.Wrap(err, "listing web templates"))
	}
	base := path.Join(webTemplatesDir, "_base.gohtml")
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl := template.Must(
			template.New(path.Base(base)).Funcs(funcs).Option("missingkey=error").ParseFS(appfs.FS, base, fp),
		)
		r.templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Wrap(errTemplateNotFound, name)
	}
	return tmpl.Execute(w, data)
}

// wantsJSON: API routes and clients asking for JSON get the view-model itself.
func wantsJSON(ctx echo.Context) bool {
	req := ctx.Request()
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// render writes data as JSON or as the named page, along with the viewer's unread count.
func (s *Server) render(ctx echo.Context, code int, name string, data interface{}) error {
	if wantsJSON(ctx) {
		return ctx.JSON(code, data)
	}

	var unread int
	if viewer := contextViewer(ctx); viewer != nil {
		n, err := s.Notifications.UnreadCount(ctx.Request().Context(), viewer.User.ID)
		if err != nil {
			return errors.Wrap(err, "counting unread notifications")
		}
		unread = n
	}
	return ctx.Render(code, name, newPageData(ctx, unread, data))
}
