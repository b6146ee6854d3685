// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/results": {
            "get": {"tags": ["results"], "summary": "List results", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Only results of this project", "name": "project", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["results"], "summary": "Register a result", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Result metadata", "name": "result", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.Result"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Result"}}, "400": {"description": "Invalid request payload"}}}
        },
        "/results/{id}": {
            "get": {"tags": ["results"], "summary": "Get result", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Result ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Result"}}, "404": {"description": "Result not found"}}},
            "delete": {"tags": ["results"], "summary": "Delete result", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Result ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Result not found"}}}
        },
        "/results/{id}/schema": {
            "get": {"tags": ["results"], "summary": "Detect schema", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Result ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Result not found"}, "502": {"description": "Report could not be loaded"}}}
        },
        "/results/{id}/aggregate": {
            "post": {"tags": ["results"], "summary": "Aggregate result", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Result ID", "name": "id", "in": "path", "required": true},
                    {"description": "Grouping, filter and chart axes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AggregateRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request"}, "404": {"description": "Result not found"}, "502": {"description": "Report could not be loaded"}}}
        },
        "/comparisons": {
            "get": {"tags": ["comparisons"], "summary": "List comparisons", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["comparisons"], "summary": "Start a comparison", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Comparison request", "name": "comparison", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ComparisonJobSpec"}}],
                "responses": {"202": {"description": "Comparison accepted"}, "400": {"description": "Invalid request"}, "404": {"description": "Result not found"}}}
        },
        "/comparisons/{id}": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Comparison not found"}}}
        },
        "/comparisons/{id}/errors": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison errors", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Comparison not found"}}}
        },
        "/comparisons/{id}/progress": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison progress", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Comparison not found"}}}
        },
        "/comparisons/{id}/logs": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison logs", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Comparison not found"}}}
        },
        "/comparisons/{id}/outputs": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison outputs", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Comparison not found"}}}
        },
        "/comparisons/{id}/chart": {
            "get": {"tags": ["comparisons"], "summary": "Get comparison chart", "produces": ["application/json", "text/html", "image/png"],
                "parameters": [
                    {"type": "string", "description": "Comparison ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "metrics, results, differences, overall", "name": "view", "in": "query"},
                    {"type": "string", "description": "json, html, png", "name": "format", "in": "query"},
                    {"type": "string", "description": "bar or line (html only)", "name": "kind", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid view or format"}, "404": {"description": "Comparison not found"}, "409": {"description": "Comparison not completed"}}}
        },
        "/settings/custom-metrics": {
            "get": {"tags": ["settings"], "summary": "List custom metrics", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["settings"], "summary": "Replace custom metrics", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "Metric column names", "name": "metrics", "in": "body", "required": true, "schema": {"type": "object", "properties": {"metrics": {"type": "array", "items": {"type": "string"}}}}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request payload"}}}
        },
        "/settings/custom-metrics/{name}": {
            "post": {"tags": ["settings"], "summary": "Add custom metric", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Metric column name", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Blank name"}}},
            "delete": {"tags": ["settings"], "summary": "Remove custom metric", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Metric column name", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/download/{jobID}/{filename}": {
            "get": {"tags": ["files"], "summary": "Download file", "produces": ["application/octet-stream"],
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true},
                    {"type": "string", "description": "File name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "File download"}, "404": {"description": "File not found"}}}
        }
    },
    "definitions": {
        "model.Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project": {"type": "string"},
                "version": {"type": "string"},
                "name": {"type": "string"},
                "kind": {"type": "string"},
                "file_path": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "model.FilterSpec": {
            "type": "object",
            "properties": {
                "noise_types": {"type": "array", "items": {"type": "string"}},
                "db_levels": {"type": "array", "items": {"type": "string"}},
                "file_name_query": {"type": "string"}
            }
        },
        "model.AggregateRequest": {
            "type": "object",
            "properties": {
                "group_by": {"type": "string", "enum": ["metric", "noise_type", "db_level", "db_level_metric"]},
                "filter": {"$ref": "#/definitions/model.FilterSpec"},
                "noise_types": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"},
                "series": {"type": "string"}
            }
        },
        "model.ComparisonJobSpec": {
            "type": "object",
            "properties": {
                "result_ids": {"type": "array", "items": {"type": "string"}},
                "baseline": {"type": "integer"},
                "metrics": {"type": "array", "items": {"type": "string"}},
                "filter": {"$ref": "#/definitions/model.FilterSpec"},
                "threshold": {"type": "number"},
                "chart_kind": {"type": "string", "enum": ["bar", "line"]},
                "timeout": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SQA Metrics API",
	Description:      "Audio quality metric results: schema detection, aggregation and multi-result comparison.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
