package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
	"github.com/jmoiron/sqlx"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// Procedure kinds used as casbin actions.
const (
	ActQuery    = "query"
	ActMutation = "mutation"
)

// modelText authorizes a role (sub) to call a procedure (obj) of a kind (act).
// Procedure names are matched with keyMatch so "preview.*" covers a namespace.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// NewEnforcer creates and configures a new Casbin enforcer.
// With a database the policies live in its casbin_rule table, sharing the
// application's connection pool; with a nil db they are kept in memory.
func NewEnforcer(db *sqlx.DB) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.Enforcer
	if db == nil {
		enforcer, err = casbin.NewEnforcer(m)
	} else {
		adapter, aerr := newAdapter(db)
		if aerr != nil {
			return nil, aerr
		}
		enforcer, err = casbin.NewEnforcer(m, adapter)
	}
	if err != nil {
		return nil, err
	}

	enforcer.AddFunction("keyMatch", util.KeyMatchFunc)

	if db != nil {
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
	}
	return enforcer, nil
}

// newAdapter wraps the adapter constructor, which panics when the policy
// table cannot be queried.
func newAdapter(db *sqlx.DB) (adapter *sqlxadapter.Adapter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("casbin_rule table unavailable: %v", r)
		}
	}()
	return sqlxadapter.NewAdapterFromOptions(&sqlxadapter.AdapterOptions{
		DB:        db,
		TableName: "casbin_rule",
	}), nil
}
