// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/wrcheckd/main.go
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object"}},
                    "409": {"description": "Conflict", "schema": {"type": "object"}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue a bearer token",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/scan": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "tags": ["scan"],
                "summary": "Scan a WR-Core stat dump",
                "parameters": [
                    {"type": "boolean", "name": "sync", "in": "query"},
                    {"type": "string", "default": "TRACK_PHASE", "name": "state", "in": "query"},
                    {"type": "string", "example": "30,50", "name": "temp", "in": "query"},
                    {"type": "boolean", "name": "verbose", "in": "query"},
                    {"type": "string", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ScanReport"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["monitoring"],
                "summary": "Get bench state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BenchState"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/relays": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["relays"],
                "summary": "List relays",
                "responses": {
                    "200": {"description": "relays", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/relays/{pin}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["relays"],
                "summary": "Switch a relay",
                "parameters": [
                    {"type": "integer", "description": "BCM pin number", "name": "pin", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetRelayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RelayState"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List bench events",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["SCAN", "SYNC_LOST", "TEMP_OUT_OF_RANGE", "RELAY_ON", "RELAY_OFF", "ERROR"], "type": "string", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.SetRelayRequest": {
            "type": "object",
            "properties": {"level": {"type": "string", "example": "on"}}
        },
        "models.RelayState": {
            "type": "object",
            "properties": {
                "pin": {"type": "integer"},
                "on": {"type": "boolean"},
                "updated_at": {"type": "string"}
            }
        },
        "models.BenchState": {
            "type": "object",
            "properties": {
                "relays": {"type": "array", "items": {"$ref": "#/definitions/models.RelayState"}},
                "last_report": {"$ref": "#/definitions/models.ScanReport"}
            }
        },
        "scanner.SyncMismatch": {
            "type": "object",
            "properties": {
                "line": {"type": "integer"},
                "state": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "models.ScanReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "scanned_at": {"type": "string"},
                "lines": {"type": "integer"},
                "sync_checked": {"type": "boolean"},
                "expected_state": {"type": "string"},
                "sync_mismatches": {"type": "integer"},
                "mismatches": {"type": "array", "items": {"$ref": "#/definitions/scanner.SyncMismatch"}},
                "temp_checked": {"type": "boolean"},
                "temp_min": {"type": "number"},
                "temp_max": {"type": "number"},
                "out_of_range": {"type": "integer"},
                "readings": {"type": "integer"},
                "mean_temp_c": {"type": "number"},
                "failures": {"type": "integer"},
                "messages": {"type": "array", "items": {"type": "string"}},
                "arg_error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "wrcheck bench API",
	Description:      "Scans White Rabbit stat dumps and drives the WR-LEN power relays.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
