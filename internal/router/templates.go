package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"time"

	"blogroll/internal/services"
	"blogroll/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

var funcMap = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"truncate": utils.Truncate,
	"excerptLength": func() int {
		return services.ExcerptLength
	},
	"mediaURL": services.URL,
	"markdown": utils.RenderMarkdown,
	"formatDate": func(t time.Time) string {
		return t.Format("2 Jan 2006 15:04")
	},
	"urlquery": func(s string) string {
		return url.QueryEscape(s)
	},
}

// views maps a render name to its file under templates/views.
var views = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/login.html",
	"users/signup.html",
	"core/404.html",
	"error.html",
}

// loadTemplates builds one template set per view: base layout + includes + the view.
func loadTemplates(fsys fs.FS) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := fs.Glob(fsys, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}
	includes, err := fs.Glob(fsys, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found")
	}

	for _, view := range views {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, "templates/views/"+view)

		tmpl, err := template.New(path.Base(files[0])).Funcs(funcMap).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}
