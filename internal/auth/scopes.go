package auth

type Scope string

const (
	AllScopes Scope = `*` // special catch-all case for matching

	InvalidScope    Scope = ""
	AdminScope      Scope = "ADMIN"
	BrandScope      Scope = "BRAND"
	InfluencerScope Scope = "INFLUENCER"
)

func (s Scope) IsOneOf(os ...Scope) bool {
	for _, o := range os {
		if s == o {
			return true
		}
	}
	return false
}

func (s Scope) Valid() bool {
	switch s {
	case AdminScope, BrandScope, InfluencerScope:
		return true
	}
	return false
}

type ScopeMap map[Scope]struct{ Get, Put, Post, Delete bool }

func (sm ScopeMap) HasAccess(scope Scope, method string) bool {
	if scope == AdminScope {
		return true
	} else if sm == nil {
		return false
	}

	var v bool
	if m, ok := sm[scope]; ok {
		switch method {
		case "HEAD", "GET":
			v = m.Get
		case "PUT":
			v = m.Put
		case "POST":
			v = m.Post
		case "DELETE":
			v = m.Delete
		}
	}
	if !v && scope != AllScopes {
		v = sm.HasAccess(AllScopes, method)
	}
	return v
}
