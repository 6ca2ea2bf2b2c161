// Package docs holds the swagger document served at /swagger/*.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tasks": {
            "get": {
                "tags": ["tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Calendar day (YYYY-MM-DD)", "name": "date", "in": "query"},
                    {"enum": ["pending", "in-progress", "completed", "deferred"], "type": "string", "name": "status", "in": "query"},
                    {"enum": ["Life", "Study", "Work", "Health", "Other"], "type": "string", "name": "tag", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TaskList"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Task data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get task by ID",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["tasks"],
                "summary": "Update a task",
                "description": "Replace title, duration, tag and subtasks. Date and status are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/tasks/{id}/start": {
            "post": {
                "tags": ["tasks"],
                "summary": "Start a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Task"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/tasks/{id}/toggle": {
            "post": {
                "tags": ["tasks"],
                "summary": "Toggle task completion",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Task"}}
                }
            }
        },
        "/tasks/{id}/subtasks/{subtaskId}/toggle": {
            "post": {
                "tags": ["tasks"],
                "summary": "Toggle subtask completion",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "subtaskId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Task"}}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["stats"],
                "summary": "Daily statistics",
                "parameters": [{"type": "string", "name": "date", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DailyStats"}}
                }
            }
        },
        "/review": {
            "post": {
                "tags": ["review"],
                "summary": "Generate the daily review",
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DailyReview"}}
                }
            }
        },
        "/news": {
            "get": {
                "tags": ["news"],
                "summary": "Today's economic news",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DailyNews"}}
                }
            }
        },
        "/chat/messages": {
            "get": {
                "tags": ["chat"],
                "summary": "Chat transcript",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["chat"],
                "summary": "Send a chat message",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "Subtask": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "isCompleted": {"type": "boolean"},
                "duration": {"type": "integer"}
            }
        },
        "Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "estimatedDuration": {"type": "integer"},
                "tag": {"type": "string", "enum": ["Life", "Study", "Work", "Health", "Other"]},
                "status": {"type": "string", "enum": ["pending", "in-progress", "completed", "deferred"]},
                "date": {"type": "string"},
                "createdAt": {"type": "integer"},
                "actualStartTime": {"type": "integer"},
                "actualEndTime": {"type": "integer"},
                "deferredCount": {"type": "integer"},
                "subtasks": {"type": "array", "items": {"$ref": "#/definitions/Subtask"}}
            }
        },
        "TaskList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Task"}},
                "total": {"type": "integer"}
            }
        },
        "TaskRequest": {
            "type": "object",
            "required": ["title", "estimatedDuration", "tag"],
            "properties": {
                "title": {"type": "string"},
                "estimatedDuration": {"type": "integer"},
                "tag": {"type": "string", "enum": ["Life", "Study", "Work", "Health", "Other"]},
                "date": {"type": "string"},
                "subtasks": {"type": "array", "items": {"$ref": "#/definitions/Subtask"}}
            }
        },
        "DailyStats": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "totalTasks": {"type": "integer"},
                "completedTasks": {"type": "integer"},
                "deferredTasks": {"type": "integer"},
                "totalEstimatedMinutes": {"type": "integer"},
                "completedMinutes": {"type": "integer"},
                "completionRate": {"type": "integer"}
            }
        },
        "DailyReview": {
            "type": "object",
            "properties": {
                "stats": {"$ref": "#/definitions/DailyStats"},
                "completedTitles": {"type": "array", "items": {"type": "string"}},
                "pendingTitles": {"type": "array", "items": {"type": "string"}},
                "text": {"type": "string"},
                "fallback": {"type": "boolean"}
            }
        },
        "DailyNews": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "headline": {"type": "string"},
                "summary": {"type": "string"},
                "insight": {"type": "string"},
                "raw": {"type": "string"},
                "fallback": {"type": "boolean"}
            }
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "discuss": {"type": "boolean"}
            }
        },
        "SendMessageRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "StrictPM API",
	Description:      "Task planning with an AI assistant",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
