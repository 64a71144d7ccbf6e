package model

type Operation struct {
	ID              string
	Method          Method
	Path            string
	Summary         string
	Description     string
	Tags            []string
	Parameters      []Parameter
	RequestBody     *RequestBody
	Responses       []Response
	DefaultResponse *Response
	Deprecated      bool
}

// Response returns the response declared for an exact status code.
func (o *Operation) Response(code int) (Response, bool) {
	for _, r := range o.Responses {
		if r.StatusCode == code {
			return r, true
		}
	}
	return Response{}, false
}

// ParametersIn returns the parameters declared at the given position, in
// declaration order.
func (o *Operation) ParametersIn(pos ParameterPosition) []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == pos {
			out = append(out, p)
		}
	}
	return out
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type ParameterPosition string

const (
	PositionQuery ParameterPosition = "query"
	PositionPath  ParameterPosition = "path"
)

type Parameter struct {
	Name        string
	In          ParameterPosition
	Description string
	Required    bool
	Type        TypeExpr
}

// BodyEncoding is the media type a request body is sent with.
type BodyEncoding string

const (
	EncodingJSON BodyEncoding = "application/json"
	EncodingForm BodyEncoding = "application/x-www-form-urlencoded"
)

type RequestBody struct {
	Description string
	Required    bool
	Encoding    BodyEncoding
	Type        TypeExpr
}

// Response maps a status code to its body type. Type is nil when the
// response declares no body.
type Response struct {
	StatusCode  int
	Description string
	Type        TypeExpr
}

// HasBody reports whether the response declares content.
func (r Response) HasBody() bool {
	return r.Type != nil
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
