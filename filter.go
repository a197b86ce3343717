package main

import (
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// FilterState carries the active skill and project filters. The two are
// independent; changing one never touches the other.
type FilterState struct {
	skill   string
	project string
}

func NewFilterState(skill, project string) FilterState {
	return FilterState{skill: normaliseFilter(skill), project: normaliseFilter(project)}
}

func (f FilterState) Skill() string   { return f.skill }
func (f FilterState) Project() string { return f.project }

func (f FilterState) WithSkill(v string) FilterState {
	f.skill = normaliseFilter(v)
	return f
}

func (f FilterState) WithProject(v string) FilterState {
	f.project = normaliseFilter(v)
	return f
}

// normaliseFilter maps a missing value to FilterAll. Anything else is kept
// verbatim, so an unknown kind simply matches nothing.
func normaliseFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return FilterAll
	}
	return v
}

// FilterOption is one button in a filter group.
type FilterOption struct {
	Value  string
	Label  string
	URL    string
	Active bool
}

// FilterGroup is a row of mutually exclusive filter buttons. Target is the
// element whose content a button replaces.
type FilterGroup struct {
	Name    string
	Label   string
	Target  string
	Options []FilterOption
}

// NewFilterGroup builds the "all" option followed by one option per kind.
// Only the option equal to active is marked.
func NewFilterGroup(name, label, endpoint, target string, kinds []string, active string) FilterGroup {
	g := FilterGroup{Name: name, Label: label, Target: target}
	values := append([]string{FilterAll}, kinds...)
	for _, v := range values {
		g.Options = append(g.Options, FilterOption{
			Value:  v,
			Label:  filterLabel(v),
			URL:    endpoint + "?filter=" + url.QueryEscape(v),
			Active: v == active,
		})
	}
	return g
}

// Active returns the selected value, or "" when none of the options match.
func (g FilterGroup) Active() string {
	for _, o := range g.Options {
		if o.Active {
			return o.Value
		}
	}
	return ""
}

func filterLabel(v string) string {
	r, size := utf8.DecodeRuneInString(v)
	if r == utf8.RuneError {
		return v
	}
	return string(unicode.ToUpper(r)) + v[size:]
}

// FilterController serves the re-rendered skill and project sections.
type FilterController struct {
	content *ContentStore
}

func NewFilterController(content *ContentStore) *FilterController {
	return &FilterController{content: content}
}

func (f *FilterController) RegisterSkills(r gin.IRoutes) {
	r.GET("/skills", func(c *gin.Context) {
		p := f.content.Snapshot()
		c.HTML(http.StatusOK, "skills.html", skillsView(p, normaliseFilter(c.Query("filter"))))
	})
}

func (f *FilterController) RegisterProjects(r gin.IRoutes) {
	r.GET("/projects", func(c *gin.Context) {
		p := f.content.Snapshot()
		c.HTML(http.StatusOK, "projects.html", projectsView(p, normaliseFilter(c.Query("filter"))))
	})
}
