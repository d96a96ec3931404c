// Package docs registers the OpenAPI document served under /docs.
//
// Regenerate it from the handler annotations with:
//
//	swag init -g cmd/server/main.go -o docs --parseInternal
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/unifiedui/docrepo-service"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns the overall health status and component statuses",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service unhealthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Service ready", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service not ready", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Service alive", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "List notes",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "integer", "default": 0, "minimum": 0, "description": "Documents to skip", "name": "skip", "in": "query"},
                    {"type": "integer", "default": 20, "maximum": 100, "minimum": 1, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "default": "createdAt", "description": "Sort field", "name": "sortBy", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "default": "desc", "description": "Sort order", "name": "order", "in": "query"},
                    {"type": "string", "description": "Only notes carrying this tag", "name": "tag", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListNotesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Create note",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"description": "Note", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateNoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.NoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Delete notes",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "description": "Only notes carrying this tag", "name": "tag", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DeleteNotesResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Create notes",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"description": "Notes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateNotesRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CreateNotesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Full-text search",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "description": "Search terms", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListNotesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Note statistics",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NoteStatsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/{noteId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Get note",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Note ID", "name": "noteId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Replace note",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Note ID", "name": "noteId", "in": "path", "required": true},
                    {"description": "Note", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateNoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Update note",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Note ID", "name": "noteId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateNoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete note",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Note ID", "name": "noteId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/indexes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Indexes"],
                "summary": "List indexes",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListIndexesResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Indexes"],
                "summary": "Create index",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"description": "Index", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateIndexRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.IndexResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tenants/{tenantId}/notes/indexes/{name}": {
            "delete": {
                "tags": ["Indexes"],
                "summary": "Drop index",
                "parameters": [
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "description": "Index name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "components": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.CreateNoteRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "integer"}
            }
        },
        "dto.CreateNotesRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "array", "items": {"$ref": "#/definitions/dto.CreateNoteRequest"}}
            }
        },
        "dto.UpdateNoteRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "integer"}
            }
        },
        "dto.NoteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "dto.ListNotesResponse": {
            "type": "object",
            "properties": {
                "notes": {"type": "array", "items": {"$ref": "#/definitions/dto.NoteResponse"}},
                "total": {"type": "integer"},
                "skip": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "dto.CreateNotesResponse": {
            "type": "object",
            "properties": {
                "notes": {"type": "array", "items": {"$ref": "#/definitions/dto.NoteResponse"}}
            }
        },
        "dto.DeleteNotesResponse": {
            "type": "object",
            "properties": {
                "deleted": {"type": "integer"}
            }
        },
        "dto.NoteStatsResponse": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "count": {"type": "integer"},
                "totalPriority": {"type": "number"},
                "highestPriority": {"$ref": "#/definitions/dto.NoteResponse"},
                "lowestPriority": {"$ref": "#/definitions/dto.NoteResponse"}
            }
        },
        "dto.CreateIndexRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "kind": {"type": "string", "enum": ["ascending", "descending", "text", "hashed", "combinedText"]},
                "fields": {"type": "array", "items": {"type": "string"}},
                "name": {"type": "string"},
                "unique": {"type": "boolean"},
                "sparse": {"type": "boolean"},
                "expireAfterSeconds": {"type": "integer"},
                "defaultLanguage": {"type": "string"},
                "weights": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.IndexResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "dto.ListIndexesResponse": {
            "type": "object",
            "properties": {
                "collection": {"type": "string"},
                "indexes": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Document Repository Service API",
	Description:      "Tenant-partitioned notes over a generic MongoDB document repository",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
