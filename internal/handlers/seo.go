package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blogroll/internal/services"

	"github.com/gin-gonic/gin"
)

// sitemapLimit 限制 sitemap 中文章数量，避免文件过大
const sitemapLimit = 500

type SEOHandler struct {
	posts   *services.PostService
	siteURL string
}

func NewSEOHandler(posts *services.PostService, siteURL string) *SEOHandler {
	return &SEOHandler{posts: posts, siteURL: strings.TrimRight(siteURL, "/")}
}

// RobotsTxt 返回 robots.txt 内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 登录后才能访问的页面
Disallow: /auth/
Disallow: /create/
Disallow: /follow/
Disallow: /metrics

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML 动态生成 sitemap.xml：首页、所有分组、最近的帖子
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	groups, err := h.posts.Groups(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	posts, err := h.posts.Recent(ctx, sitemapLimit)
	if err != nil {
		fail(c, err)
		return
	}

	now := time.Now().Format("2006-01-02")
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/", LastMod: now, ChangeFreq: "daily", Priority: "1.0"})
	for _, g := range groups {
		set.URLs = append(set.URLs, sitemapURL{
			Loc: h.siteURL + "/group/" + g.Slug + "/", LastMod: now, ChangeFreq: "daily", Priority: "0.7",
		})
	}
	for _, p := range posts {
		// 根据文章新旧程度调整优先级
		priority, changefreq := "0.6", "weekly"
		if time.Since(p.CreatedAt) < 7*24*time.Hour {
			priority, changefreq = "0.8", "daily"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + postURL(p.ID),
			LastMod:    p.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: changefreq,
			Priority:   priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
