// Package openapi builds the Swagger 2.0 document for the /api routes and
// registers it with swag so http-swagger can serve it at /swagger/doc.json.
//
// Schemas are derived from the model types, so a field added to a record
// shows up in the document without further changes.
package openapi

import (
	"reflect"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/swaggo/swag"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
)

type object = map[string]interface{}

type kindInfo struct {
	kind   model.Kind
	record reflect.Type
	patch  reflect.Type
}

var kinds = []kindInfo{
	{model.KindOrganization, reflect.TypeOf(model.Organization{}), reflect.TypeOf(model.OrganizationPatch{})},
	{model.KindLocation, reflect.TypeOf(model.Location{}), reflect.TypeOf(model.LocationPatch{})},
	{model.KindGroup, reflect.TypeOf(model.Group{}), reflect.TypeOf(model.GroupPatch{})},
	{model.KindMember, reflect.TypeOf(model.Member{}), reflect.TypeOf(model.MemberPatch{})},
}

var readOnly = map[string]bool{}

func init() {
	for _, name := range model.ServerOwnedFields {
		readOnly[name] = true
	}
}

var timestampType = reflect.TypeOf(model.Timestamp{})

// Document returns the Swagger 2.0 document as indented JSON
func Document(version string) ([]byte, error) {
	paths := object{}
	definitions := object{
		"Error": object{
			"type":       "object",
			"properties": object{"error": object{"type": "string"}},
		},
	}
	var tags []object

	for _, k := range kinds {
		title := titleCase(k.kind.String())
		plural := k.kind.Collection()

		definitions[title] = schemaFor(k.record, true)
		definitions[title+"Patch"] = schemaFor(k.patch, false)
		tags = append(tags, object{"name": title, "description": title + " management"})

		ref := object{"$ref": "#/definitions/" + title}
		errRef := object{"$ref": "#/definitions/Error"}
		idParam := object{"name": "id", "in": "path", "required": true, "type": "string", "description": title + " ID"}
		notFound := object{"description": title + " not found", "schema": errRef}
		serverError := object{"description": "Storage failure", "schema": errRef}
		badRequest := object{"description": "Malformed JSON body", "schema": errRef}

		paths["/"+plural] = object{
			"get": object{
				"tags":        []string{title},
				"summary":     "Get all " + plural,
				"operationId": "list" + titleCase(plural),
				"produces":    []string{"application/json"},
				"responses": object{
					"200": object{"description": "List of " + plural, "schema": object{"type": "array", "items": ref}},
					"500": serverError,
				},
			},
			"post": object{
				"tags":        []string{title},
				"summary":     "Create a new " + k.kind.String(),
				"operationId": "create" + title,
				"consumes":    []string{"application/json"},
				"produces":    []string{"application/json"},
				"parameters":  []object{{"name": "body", "in": "body", "required": true, "schema": ref}},
				"responses": object{
					"201": object{"description": title + " created", "schema": ref},
					"400": badRequest,
					"500": serverError,
				},
			},
		}
		paths["/"+plural+"/{id}"] = object{
			"get": object{
				"tags":        []string{title},
				"summary":     "Get a " + k.kind.String() + " by ID",
				"operationId": "get" + title,
				"produces":    []string{"application/json"},
				"parameters":  []object{idParam},
				"responses": object{
					"200": object{"description": title + " found", "schema": ref},
					"404": notFound,
					"500": serverError,
				},
			},
			"put": object{
				"tags":        []string{title},
				"summary":     "Update a " + k.kind.String(),
				"operationId": "update" + title,
				"consumes":    []string{"application/json"},
				"produces":    []string{"application/json"},
				"parameters": []object{
					idParam,
					{"name": "body", "in": "body", "required": true, "schema": object{"$ref": "#/definitions/" + title + "Patch"}},
				},
				"responses": object{
					"200": object{"description": title + " updated", "schema": ref},
					"400": badRequest,
					"404": notFound,
					"500": serverError,
				},
			},
			"delete": object{
				"tags":        []string{title},
				"summary":     "Delete a " + k.kind.String(),
				"operationId": "delete" + title,
				"produces":    []string{"application/json"},
				"parameters":  []object{idParam},
				"responses": object{
					"200": object{"description": title + " deleted", "schema": ref},
					"404": notFound,
					"500": serverError,
				},
			},
		}
	}

	doc := object{
		"swagger":  "2.0",
		"basePath": "/api",
		"info": object{
			"title":       "Ezra API",
			"description": "CRUD API for organizations, locations, groups and members",
			"version":     version,
		},
		"tags":        tags,
		"paths":       paths,
		"definitions": definitions,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func schemaFor(t reflect.Type, markReadOnly bool) object {
	props := object{}
	collectProperties(t, props, markReadOnly)
	return object{"type": "object", "properties": props}
}

func collectProperties(t reflect.Type, props object, markReadOnly bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			collectProperties(f.Type, props, markReadOnly)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		prop := object{"type": "string"}
		if ft == timestampType {
			prop["format"] = "date-time"
		}
		if markReadOnly && readOnly[name] {
			prop["readOnly"] = true
		}
		props[name] = prop
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type swaggerDoc struct {
	doc string
}

func (s swaggerDoc) ReadDoc() string {
	return s.doc
}

var registerOnce sync.Once

// Register makes the document available to http-swagger. Only the first
// call has an effect.
func Register(version string) error {
	var err error
	registerOnce.Do(func() {
		var doc []byte
		doc, err = Document(version)
		if err != nil {
			return
		}
		swag.Register(swag.Name, swaggerDoc{doc: string(doc)})
	})
	return err
}
