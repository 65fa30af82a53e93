// Package docs holds the OpenAPI description served at /swagger.
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
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/devices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "List devices",
                "responses": {"200": {"description": "count, devices"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/v1/devices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Get device",
                "parameters": [{"type": "string", "description": "Cooker id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/devices/{id}/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Latest state snapshot; 404 until the device has reported once.",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Get device state",
                "parameters": [{"type": "string", "description": "Cooker id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/devices/{id}/cook/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Builds a preheat/cook stage program and sends CMD_APO_START.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Start cook",
                "parameters": [
                    {"type": "string", "description": "Cooker id", "name": "id", "in": "path", "required": true},
                    {"description": "Cook parameters", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StartCookRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}, "503": {"description": "Service Unavailable"}, "504": {"description": "Gateway Timeout"}}
            }
        },
        "/api/v1/devices/{id}/cook/stop": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Stop cook",
                "parameters": [{"type": "string", "description": "Cooker id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}, "503": {"description": "Service Unavailable"}, "504": {"description": "Gateway Timeout"}}
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filter logs by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List logs",
                "parameters": [
                    {"type": "string", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["DEVICE_DISCOVERED", "COOK_STARTED", "COOK_STOPPED", "COOK_TARGET_REACHED", "COMMAND_FAILED", "TOKEN_REFRESHED"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"type": "string", "description": "Only events of this device", "name": "cooker_id", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Upgrades to a WebSocket. Pushes a snapshot on connect, every state update as it arrives and a full snapshot every interval.",
                "tags": ["devices"],
                "summary": "Device stream",
                "parameters": [
                    {"type": "string", "description": "API token when the Authorization header cannot be set", "name": "token", "in": "query"},
                    {"type": "string", "description": "Only stream this cooker id", "name": "device", "in": "query"},
                    {"type": "string", "description": "Snapshot interval, e.g. 10s (max 60s)", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Snapshot interval in milliseconds", "name": "interval_ms", "in": "query"}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.StartCookRequest": {
            "type": "object",
            "properties": {
                "unit": {"type": "string", "example": "C"},
                "target_temperature": {"type": "number", "example": 180},
                "probe_temperature": {"type": "number", "example": 63},
                "timer_seconds": {"type": "integer", "example": 1200},
                "timer_mode": {"type": "string", "example": "when_preheated"},
                "sous_vide": {"type": "boolean"},
                "target_humidity": {"type": "integer", "example": 100}
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
	Title:            "Anova Oven Gateway API",
	Description:      "Monitors and controls Anova Precision Ovens through the Anova cloud gateway.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
