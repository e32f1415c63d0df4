// Package navigation holds the admin menu and filters it by role.
package navigation

import (
	"fmt"

	"expopanel/internal/shared/authorization"
	"expopanel/internal/shared/errors"
)

// ActionView is the only action checked for menu entries.
const ActionView = "view"

const (
	PathExhibitors     = "/expositores"
	PathExhibitorUsers = "/expositores_usuarios"
	PathAgenda         = "/agenda"
	PathBanners        = "/banners"
	PathDirections     = "/comollegar"
	PathNotifications  = "/notificaciones"
	PathReports        = "/reportes"
	PathOtherReports   = "/reportesotros"
	PathLogout         = "/salir"
)

type Item struct {
	Path  string
	Label string
	Roles []authorization.UserRole
}

type Section struct {
	Title string
	Items []Item
}

var (
	adminOnly = []authorization.UserRole{authorization.RoleAdmin}
	everyone  = []authorization.UserRole{authorization.RoleAdmin, authorization.RoleUser}
)

// DefaultMenu is the panel's sidebar.
func DefaultMenu() []Section {
	return []Section{
		{
			Title: "Management",
			Items: []Item{
				{Path: PathExhibitors, Label: "Exhibitors", Roles: adminOnly},
				{Path: PathExhibitorUsers, Label: "Exhibitor users", Roles: adminOnly},
				{Path: PathAgenda, Label: "Agenda", Roles: adminOnly},
				{Path: PathBanners, Label: "Banners", Roles: everyone},
				{Path: PathDirections, Label: "Directions", Roles: everyone},
			},
		},
		{
			Title: "Notifications",
			Items: []Item{
				{Path: PathNotifications, Label: "Notifications", Roles: everyone},
			},
		},
		{
			Title: "Analytics",
			Items: []Item{
				{Path: PathReports, Label: "Reports", Roles: adminOnly},
				{Path: PathOtherReports, Label: "Other reports", Roles: adminOnly},
			},
		},
		{
			Title: "Session",
			Items: []Item{
				{Path: PathLogout, Label: "Log out", Roles: everyone},
			},
		},
	}
}

// Rule is one role/path grant derived from the menu.
type Rule struct {
	Role string
	Path string
}

// Rules flattens the menu into one grant per role and item.
func Rules(menu []Section) []Rule {
	var rules []Rule
	for _, s := range menu {
		for _, it := range s.Items {
			for _, r := range it.Roles {
				rules = append(rules, Rule{Role: string(r), Path: it.Path})
			}
		}
	}
	return rules
}

// Policy decides whether a role may use a path.
type Policy interface {
	Enforce(role, path, action string) (bool, error)
}

// Guard filters the menu and checks access for the session role.
type Guard struct {
	menu   []Section
	policy Policy
}

func NewGuard(menu []Section, policy Policy) *Guard {
	return &Guard{menu: menu, policy: policy}
}

// Allowed reports whether role may view path.
func (g *Guard) Allowed(role authorization.UserRole, path string) (bool, error) {
	return g.policy.Enforce(string(role), path, ActionView)
}

// Require returns a forbidden error when role may not view path.
func (g *Guard) Require(role authorization.UserRole, path string) error {
	ok, err := g.Allowed(role, path)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewForbiddenError(fmt.Sprintf("role %q cannot access %s", role, path))
	}
	return nil
}

// Visible returns the sections and items role may see. Empty sections are
// dropped.
func (g *Guard) Visible(role authorization.UserRole) ([]Section, error) {
	var out []Section
	for _, s := range g.menu {
		var items []Item
		for _, it := range s.Items {
			ok, err := g.Allowed(role, it.Path)
			if err != nil {
				return nil, err
			}
			if ok {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			out = append(out, Section{Title: s.Title, Items: items})
		}
	}
	return out, nil
}
