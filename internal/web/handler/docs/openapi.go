package docs

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// OpenAPIVersion is the version of the generated document.
const OpenAPIVersion = "3.0.3"

// Document is the subset of an OpenAPI document generated from the route table.
type Document struct {
	OpenAPI string                          `json:"openapi"`
	Info    Info                            `json:"info"`
	Paths   map[string]map[string]Operation `json:"paths"`
}

// Info describes the API.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Operation is one method on one path.
type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

// Parameter is a path parameter.
type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required"`
	Schema   Schema `json:"schema"`
}

// Schema is the type of a parameter.
type Schema struct {
	Type string `json:"type"`
}

// Response describes a response code.
type Response struct {
	Description string `json:"description"`
}

// Build generates the document from the registered routes, leaving out the
// root path and every path below one of the undocumented prefixes.
func Build(title, version string, routes []fiber.Route, undocumented []string) Document {
	doc := Document{
		OpenAPI: OpenAPIVersion,
		Info:    Info{Title: title, Version: version},
		Paths:   make(map[string]map[string]Operation),
	}

	sort.SliceStable(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })

	for _, r := range routes {
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodConnect || r.Method == fiber.MethodTrace {
			continue
		}

		if r.Path == "/" || hasPrefix(r.Path, undocumented) {
			continue
		}

		path, params := convertPath(r.Path)
		method := strings.ToLower(r.Method)

		if doc.Paths[path] == nil {
			doc.Paths[path] = make(map[string]Operation)
		}

		doc.Paths[path][method] = Operation{
			OperationID: operationID(method, path),
			Summary:     r.Name,
			Parameters:  params,
			Responses: map[string]Response{
				"200": {Description: http.StatusText(http.StatusOK)},
			},
		}
	}

	return doc
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}

	return false
}

// convertPath rewrites fiber parameters (:id, :id?) to OpenAPI templates ({id}).
func convertPath(path string) (string, []Parameter) {
	segments := strings.Split(path, "/")

	var params []Parameter

	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(seg, ":"), "?")
		segments[i] = "{" + name + "}"

		params = append(params, Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   Schema{Type: "string"},
		})
	}

	return strings.Join(segments, "/"), params
}

func operationID(method, path string) string {
	replacer := strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_", ".", "_")

	return method + strings.TrimRight(replacer.Replace(path), "_")
}
