package http

import (
	"embed"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const maxBodyBytes = 1 << 20

// loadSchemas compiles every embedded schema, keyed by file name without
// the ".schema.json" suffix.
func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	schemas := make(map[string]*gojsonschema.Schema, len(entries))
	for _, e := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		schemas[strings.TrimSuffix(e.Name(), ".schema.json")] = schema
	}
	return schemas, nil
}

// validBody reads the request body and checks it against the named schema.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) validBody(c *gin.Context, name string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(400, gin.H{"error": "request body is required"})
		return nil, false
	}

	res, err := s.schemas[name].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_json"})
		return nil, false
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(400, gin.H{"error": "schema_invalid", "details": d})
		return nil, false
	}
	return body, true
}
