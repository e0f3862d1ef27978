// Package http provides the request and response helpers used by the
// diagnostics handlers.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	format := req.Query("format", "json")
//	ns     := req.RouteParam("*")   // chi wildcard tail
//	req.WantsYAML()                 // ?format=yaml or Accept: application/yaml
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(http.StatusOK, v)
//	res.YAML(http.StatusOK, v)
//	res.Negotiate(req, http.StatusOK, v)   // YAML when the request asks for it
//
//	res.Error(400, "msg")   // {"message": "msg"}
//	res.NotFound()
//	res.ServerError()       // 500, also sent when YAML encoding fails
package http
