package api

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.yaml
var swaggerYAML []byte

// SwaggerInfo holds the JSON form of the document in the swag registry.
var SwaggerInfo = &swag.Spec{
	Version:          "2.0.0",
	BasePath:         "/api/v2",
	Title:            "Pokedex API",
	InfoInstanceName: "swagger",
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	jsonSpec, err := GetSwaggerSpecAsJSON()
	if err != nil {
		panic("api: embedded swagger.yaml is invalid: " + err.Error())
	}
	SwaggerInfo.SwaggerTemplate = string(jsonSpec)
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// GetSwaggerSpec returns the embedded OpenAPI document as YAML.
func GetSwaggerSpec() []byte {
	return swaggerYAML
}

// GetSwaggerSpecAsJSON returns the OpenAPI document converted to JSON.
func GetSwaggerSpecAsJSON() ([]byte, error) {
	var spec any
	if err := yaml.Unmarshal(swaggerYAML, &spec); err != nil {
		return nil, err
	}
	return json.Marshal(spec)
}

// SwaggerHandler serves the OpenAPI document, as JSON when the client asks for it.
func SwaggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
			if err != nil {
				Error(w, http.StatusInternalServerError, "Failed to read swagger spec")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(doc))
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(swaggerYAML)
	}
}
