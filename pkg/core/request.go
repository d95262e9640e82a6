package core

// AuthLevel describes what must be attached to a request before it is sent.
type AuthLevel int

const (
	// AuthNone is a public endpoint: no key, no signature.
	AuthNone AuthLevel = iota
	// AuthAPIKey sends the API key header but no signature. The user data
	// stream endpoints work this way.
	AuthAPIKey
	// AuthSigned sends the API key header plus a timestamp and an HMAC
	// signature over the encoded query.
	AuthSigned
)

// String returns the string representation of the auth level.
func (a AuthLevel) String() string {
	return [...]string{"none", "api-key", "signed"}[a]
}

type Request struct {
	Method  string
	Version string
	Path    string
	Auth    AuthLevel
	Weight  int
	Query   *Params
}

func NewRequest(method, version, path string) *Request {
	return &Request{
		Method:  method,
		Version: version,
		Path:    path,
		Auth:    AuthNone,
		Weight:  1,
		Query:   NewParams(),
	}
}

func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = NewParams()
	}
	r.Query.Set(key, value)
	return r
}

func (r *Request) SetAuth(level AuthLevel) *Request {
	r.Auth = level
	return r
}

func (r *Request) SetWeight(weight int) *Request {
	r.Weight = weight
	return r
}
