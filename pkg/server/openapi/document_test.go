package openapi

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type parsedSwaggerDoc struct {
	Swagger     string                                       `json:"swagger"`
	BasePath    string                                       `json:"basePath"`
	Paths       map[string]map[string]map[string]interface{} `json:"paths"`
	Definitions map[string]struct {
		Properties map[string]map[string]interface{} `json:"properties"`
	} `json:"definitions"`
}

func TestDocument(t *testing.T) {
	data, err := Document("test")
	require.NoError(t, err)

	var doc parsedSwaggerDoc
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api", doc.BasePath)

	operations := 0
	for _, methods := range doc.Paths {
		operations += len(methods)
	}
	assert.Equal(t, 20, operations)
	assert.Contains(t, doc.Paths, "/members/{id}")
	assert.Contains(t, doc.Paths["/groups"], "post")

	org := doc.Definitions["Organization"].Properties
	assert.Equal(t, true, org["id"]["readOnly"])
	assert.Equal(t, "date-time", org["createdOn"]["format"])
	assert.Contains(t, org, "createdBy")
	assert.NotContains(t, org, "organizationId")

	member := doc.Definitions["Member"].Properties
	assert.Contains(t, member, "groupId")
	assert.NotContains(t, member, "name")

	patch := doc.Definitions["GroupPatch"].Properties
	assert.Contains(t, patch, "locationId")
	assert.NotContains(t, patch, "id")
	assert.NotContains(t, patch, "createdBy")
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register("test"))
	require.NoError(t, Register("ignored"))

	doc, err := swag.ReadDoc()
	require.NoError(t, err)
	assert.Contains(t, doc, `"title": "Ezra API"`)
}
