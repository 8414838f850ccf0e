// Package nav computes which dashboard screens a session may reach.
package nav

import (
	"fmt"
	"sort"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/example/rideflow/internal/models"
)

// Decision is what the router does for a session: either redirect or show
// the listed sections.
type Decision struct {
	Redirect string    `json:"redirect,omitempty"`
	Role     string    `json:"role,omitempty"`
	Sections []Section `json:"sections"`
}

// Resolve maps a session snapshot to a navigation decision. ok is false
// when nobody is logged in.
func Resolve(s models.Session, ok bool) Decision {
	if !ok || !s.Valid() {
		return Decision{Redirect: LoginRoute, Sections: []Section{}}
	}
	return Decision{Role: string(s.Identity.Role), Sections: Visible(SectionsFor(s.Identity.Role))}
}

const guardModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && r.act == p.act
`

// Guard answers deep-link checks against the capability table.
type Guard struct {
	e *casbin.Enforcer
}

func NewGuard() (*Guard, error) {
	m, err := model.NewModelFromString(guardModel)
	if err != nil {
		return nil, fmt.Errorf("nav model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("nav enforcer: %w", err)
	}
	roles := make([]string, 0, len(capabilities))
	for r := range capabilities {
		roles = append(roles, string(r))
	}
	sort.Strings(roles)
	for _, r := range roles {
		for _, s := range capabilities[models.Role(r)] {
			if _, err := e.AddPolicy(r, s.Route, "view"); err != nil {
				return nil, fmt.Errorf("nav policy %s %s: %w", r, s.Route, err)
			}
		}
		// actions live under the role's own subtree
		for _, obj := range []string{"/features/" + r, "/features/" + r + "/*"} {
			if _, err := e.AddPolicy(r, obj, "act"); err != nil {
				return nil, fmt.Errorf("nav policy %s %s: %w", r, obj, err)
			}
		}
	}
	return &Guard{e: e}, nil
}

// Allow reports whether role may open path. Enforcer errors deny.
func (g *Guard) Allow(role models.Role, path string) bool {
	ok, err := g.e.Enforce(string(role), path, "view")
	return err == nil && ok
}

// AllowAction reports whether role may call an action endpoint at path.
func (g *Guard) AllowAction(role models.Role, path string) bool {
	ok, err := g.e.Enforce(string(role), path, "act")
	return err == nil && ok
}
