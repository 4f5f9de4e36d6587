// Package swagger registers a static OpenAPI document for the docs endpoint.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EventHub API",
        "description": "Event discovery and ticketing API with natural-language search",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Signup and login"},
        {"name": "Chatbot", "description": "Natural-language event suggestions"},
        {"name": "Events", "description": "Event browsing and lifecycle"},
        {"name": "Tickets", "description": "Registrations and ticket passes"},
        {"name": "Exports", "description": "Attendee-list exports"},
        {"name": "Admin", "description": "Moderation and directories"}
    ],
    "paths": {
        "/chatbot/suggest-events": {
            "post": {
                "tags": ["Chatbot"],
                "summary": "Suggest events from a natural-language message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestRequest"}}
                ],
                "responses": {
                    "200": {"description": "Matching events with the extracted criteria"},
                    "500": {"description": "Extraction or query failure"}
                }
            }
        },
        "/events/filter": {
            "get": {
                "tags": ["Events"],
                "summary": "Browse events with structured filters",
                "parameters": [
                    {"name": "eventType", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "maxPrice", "in": "query", "type": "number"},
                    {"name": "locationType", "in": "query", "type": "string", "enum": ["virtual", "in-person"]}
                ],
                "responses": {
                    "200": {"description": "Matching events"}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Event with organizer identity"},
                    "404": {"description": "Unknown event"}
                }
            }
        },
        "/events": {
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created event"},
                    "429": {"description": "Creation rate limit exceeded"}
                }
            }
        },
        "/events/{id}/register": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Register for an event",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Issued ticket"},
                    "409": {"description": "Sold out or already registered"}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Account with issued token"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue a token",
                "responses": {
                    "200": {"description": "Issued token"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        }
    },
    "definitions": {
        "SuggestRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string"}
            }
        },
        "EventRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "eventTypes": {"type": "array", "items": {"type": "string"}},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "locationType": {"type": "string", "enum": ["virtual", "in-person"]},
                "location": {"type": "string"},
                "price": {"type": "number"},
                "totalTickets": {"type": "integer"},
                "maxAttendees": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
