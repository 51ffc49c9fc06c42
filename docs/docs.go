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
        "/ledger": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Ledger summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.BaseResponse"}}
                }
            }
        },
        "/draws": {
            "get": {
                "produces": ["application/json"],
                "tags": ["draws"],
                "summary": "List conducted draws",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.BaseResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Random numbers unless numbers are supplied. Coordinator role only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["draws"],
                "summary": "Conduct the next draw",
                "parameters": [
                    {"description": "Fixed winning numbers", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/server.ConductDrawRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.BaseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/draws/{number}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["draws"],
                "summary": "Get one draw",
                "parameters": [
                    {"type": "integer", "description": "Draw number", "name": "number", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.BaseResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/wallet": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["player"],
                "summary": "Player balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.BaseResponse"}}
                }
            }
        },
        "/offices/{office}/tickets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["player"],
                "summary": "Buy a ticket",
                "parameters": [
                    {"type": "integer", "description": "Office number", "name": "office", "in": "path", "required": true},
                    {"description": "Form", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.IssueTicketRequest"}}
                ],
                "responses": {
                    "200": {"description": "Not sold", "schema": {"$ref": "#/definitions/server.BaseResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.BaseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/offices/{office}/redemptions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Pays every conducted draw of the ticket not yet settled to the caller's wallet. The identifier is the claim; it is not bound to the buyer. Repeat calls are safe.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["player"],
                "summary": "Redeem a ticket",
                "parameters": [
                    {"type": "integer", "description": "Office number", "name": "office", "in": "path", "required": true},
                    {"description": "Ticket identifier", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.RedeemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.BaseResponse"}},
                    "422": {"description": "Forged ticket", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "server.BaseResponse": {
            "type": "object",
            "properties": {
                "status_code": {"type": "integer"},
                "is_success": {"type": "boolean"},
                "data": {}
            }
        },
        "server.ConductDrawRequest": {
            "type": "object",
            "properties": {
                "numbers": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "server.IssueTicketRequest": {
            "type": "object",
            "properties": {
                "bets": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "random_bets": {"type": "integer"},
                "draws": {"type": "integer"}
            }
        },
        "server.RedeemRequest": {
            "type": "object",
            "required": ["ticket_id"],
            "properties": {
                "ticket_id": {"type": "string", "example": "17-3-000482913-31"}
            }
        },
        "types.ErrorDetail": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string"},
                "path": {"type": "string"},
                "error_message": {"type": "string"},
                "error_code": {"type": "integer"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "status_code": {"type": "integer"},
                "is_success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/types.ErrorDetail"}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Lotto Ledger API",
	Description:      "Ticket sales, draws and settlement.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
