// Package docs holds the Swagger description served at /swagger outside production.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Login Credentials", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an account",
                "parameters": [
                    {"description": "Registration details", "name": "register", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/accounts/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inventory": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "List inventory transactions",
                "parameters": [
                    {"type": "string", "name": "bloodType", "in": "query"},
                    {"type": "string", "name": "direction", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "organisationId", "in": "query"},
                    {"type": "string", "name": "donorId", "in": "query"},
                    {"type": "string", "name": "hospitalId", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "nextToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListTransactionsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Record an inventory transaction",
                "parameters": [
                    {"description": "Transaction details", "name": "transaction", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RecordTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Validation error or insufficient inventory", "schema": {"$ref": "#/definitions/handlers.InsufficientInventoryResponse"}},
                    "403": {"description": "Role may not record this direction", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Organisation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inventory/availability": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Availability of one blood type",
                "parameters": [
                    {"type": "string", "name": "bloodType", "in": "query", "required": true},
                    {"type": "string", "name": "scope", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AvailabilityResponse"}},
                    "404": {"description": "Scope not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inventory/availability/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Availability of every blood type",
                "parameters": [
                    {"type": "string", "name": "scope", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AvailabilitySummaryResponse"}}
                }
            }
        },
        "/inventory/expiry-sweep": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Flag expired donations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ExpirySweepResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inventory/{transactionID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Get an inventory transaction",
                "parameters": [
                    {"type": "string", "name": "transactionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string"},
                "account": {"$ref": "#/definitions/dto.AccountResponse"}
            }
        },
        "dto.RegisterAccountRequest": {
            "type": "object",
            "required": ["role", "name", "email", "password", "phone", "address"],
            "properties": {
                "role": {"type": "string", "enum": ["organisation", "hospital", "donor"]},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "bloodType": {"type": "string"}
            }
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "role": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "bloodType": {"type": "string"},
                "eligible": {"type": "boolean"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.NewDonorRequest": {
            "type": "object",
            "required": ["name", "email", "bloodType"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "bloodType": {"type": "string"}
            }
        },
        "dto.RecordTransactionRequest": {
            "type": "object",
            "required": ["direction", "bloodType", "quantity"],
            "properties": {
                "direction": {"type": "string", "enum": ["in", "out"]},
                "bloodType": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1, "maximum": 100000},
                "donorId": {"type": "string"},
                "newDonor": {"$ref": "#/definitions/dto.NewDonorRequest"},
                "hospitalId": {"type": "string"},
                "organisationId": {"type": "string"}
            }
        },
        "dto.TransactionResponse": {
            "type": "object",
            "properties": {
                "transactionID": {"type": "string"},
                "direction": {"type": "string"},
                "bloodType": {"type": "string"},
                "quantity": {"type": "integer"},
                "donorId": {"type": "string"},
                "organisationId": {"type": "string"},
                "hospitalId": {"type": "string"},
                "contactEmail": {"type": "string"},
                "status": {"type": "string"},
                "createdAt": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "dto.ListTransactionsResponse": {
            "type": "object",
            "properties": {
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}},
                "nextToken": {"type": "string"}
            }
        },
        "dto.AvailabilityResponse": {
            "type": "object",
            "properties": {
                "scope": {"type": "string"},
                "bloodType": {"type": "string"},
                "totalIn": {"type": "integer"},
                "totalOut": {"type": "integer"},
                "expiredIn": {"type": "integer"},
                "available": {"type": "integer"}
            }
        },
        "dto.AvailabilitySummaryResponse": {
            "type": "object",
            "properties": {
                "scope": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.AvailabilityResponse"}}
            }
        },
        "dto.ExpirySweepResponse": {
            "type": "object",
            "properties": {
                "expired": {"type": "integer"},
                "cutoff": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handlers.InsufficientInventoryResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "bloodType": {"type": "string"},
                "requested": {"type": "integer"},
                "available": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Blood Bank Inventory API",
	Description:      "Inventory ledger, availability and allocation for blood banks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
