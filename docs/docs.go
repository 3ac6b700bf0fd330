// Package docs holds the Swagger document served at /swagger/. Keep it in
// sync with the handler annotations in internal/api.
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
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/subjects": {
            "get": {
                "description": "Subjects in canonical order with question counts and mastery.",
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "List subjects",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.SubjectResponse"}}
                    }
                }
            }
        },
        "/questions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "List questions",
                "parameters": [
                    {"type": "string", "description": "Search term", "name": "q", "in": "query"},
                    {"type": "string", "description": "Comma separated subjects", "name": "subject", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.QuestionResponse"}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Create a question",
                "parameters": [
                    {"description": "Question", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.QuestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.QuestionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/questions/{questionID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Get a question",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "questionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QuestionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Update a question",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "questionID", "in": "path", "required": true},
                    {"description": "Question", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.QuestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QuestionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Questions"],
                "summary": "Delete a question",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "questionID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/questions/{questionID}/bookmark": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Toggle bookmark",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "questionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookmarkResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/questions/{questionID}/reset-stats": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Reset statistics",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "questionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QuestionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/review": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Review list",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.QuestionResponse"}}
                    }
                }
            }
        },
        "/export": {
            "get": {
                "description": "JSON array of questions with statistics, readable by POST /import/json.",
                "produces": ["application/json"],
                "tags": ["Import/Export"],
                "summary": "Export the bank",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/import/json": {
            "post": {
                "description": "Replaces the whole bank. Nothing changes when the payload is rejected.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Import/Export"],
                "summary": "Import JSON",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ImportResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/import/csv": {
            "post": {
                "description": "Columns: subject,topic,prompt,choice1,choice2,choice3,choice4,answerIndex,explanation. The first line is a header. Invalid rows are skipped.",
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "tags": ["Import/Export"],
                "summary": "Import CSV",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ImportResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Config"],
                "summary": "Get exam configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ExamConfigResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Config"],
                "summary": "Update exam configuration",
                "parameters": [
                    {"description": "Settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.ExamConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ExamConfigResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "description": "Practice sessions draw max_questions (default 10) at random and score each answer immediately. Mock sessions use the exam configuration and are scored on finish.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Start a session",
                "parameters": [
                    {"description": "Session settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "not enough questions", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/answers": {
            "post": {
                "description": "Practice: the first answer is final and the verdict is returned. Mock: answers can be changed until finish.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Answer a question",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true},
                    {"description": "Answer", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SubmitAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SubmitAnswerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/advance": {
            "post": {
                "description": "Mock sessions move both ways. Practice sessions only move forward and finish after the last question.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Move to another question",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true},
                    {"description": "Direction", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AdvanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/finish": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Finish a mock session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/retry": {
            "post": {
                "description": "The time budget keeps the per-question pace of the original exam, rounded up to whole minutes.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Retry wrong answers",
                "parameters": [
                    {"type": "string", "description": "Finished mock session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/countdown": {
            "get": {
                "description": "WebSocket. Sends a CountdownMessage on connect and on every tick; the last message has state \"finished\".",
                "tags": ["Sessions"],
                "summary": "Session countdown",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Session history",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of records", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.SessionRecordResponse"}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "session not found"}
            }
        },
        "api.ChoiceRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "api.ChoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "api.QuestionRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "prompt": {"type": "string"},
                "choices": {"type": "array", "items": {"$ref": "#/definitions/api.ChoiceRequest"}},
                "answer_id": {"type": "string"},
                "answer_index": {"type": "integer"},
                "explanation": {"type": "string"},
                "difficulty": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "source": {"type": "string"},
                "bookmarked": {"type": "boolean"}
            }
        },
        "api.QuestionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "prompt": {"type": "string"},
                "choices": {"type": "array", "items": {"$ref": "#/definitions/api.ChoiceResponse"}},
                "answer_id": {"type": "string"},
                "explanation": {"type": "string"},
                "difficulty": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "source": {"type": "string"},
                "bookmarked": {"type": "boolean"},
                "times_answered": {"type": "integer"},
                "times_correct": {"type": "integer"},
                "mastery": {"type": "integer"},
                "last_seen": {"type": "string"}
            }
        },
        "api.SubjectResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Database"},
                "questions": {"type": "integer", "example": 12},
                "times_answered": {"type": "integer", "example": 40},
                "times_correct": {"type": "integer", "example": 31},
                "mastery": {"type": "integer", "example": 78}
            }
        },
        "api.BookmarkResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "bookmarked": {"type": "boolean"}
            }
        },
        "api.ImportResult": {
            "type": "object",
            "properties": {
                "questions_imported": {"type": "integer", "example": 42}
            }
        },
        "api.ExamConfigRequest": {
            "type": "object",
            "properties": {
                "mock_count": {"type": "integer", "example": 60},
                "mock_minutes": {"type": "integer", "example": 60},
                "pass_score": {"type": "integer", "example": 60}
            }
        },
        "api.ExamConfigResponse": {
            "type": "object",
            "properties": {
                "mock_count": {"type": "integer", "example": 60},
                "mock_minutes": {"type": "integer", "example": 60},
                "pass_score": {"type": "integer", "example": 60}
            }
        },
        "api.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "example": "practice"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "max_questions": {"type": "integer", "example": 10},
                "max_duration_min": {"type": "integer", "example": 15}
            }
        },
        "api.SubmitAnswerRequest": {
            "type": "object",
            "properties": {
                "question_id": {"type": "string"},
                "choice_id": {"type": "string"}
            }
        },
        "api.SubmitAnswerResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "answered"},
                "correct": {"type": "boolean"},
                "answer_id": {"type": "string"},
                "explanation": {"type": "string"}
            }
        },
        "api.AdvanceRequest": {
            "type": "object",
            "properties": {
                "direction": {"type": "string", "example": "forward"}
            }
        },
        "api.SessionQuestion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "prompt": {"type": "string"},
                "choices": {"type": "array", "items": {"$ref": "#/definitions/api.ChoiceResponse"}},
                "selected_id": {"type": "string"},
                "answer_id": {"type": "string"},
                "explanation": {"type": "string"},
                "correct": {"type": "boolean"}
            }
        },
        "api.ResultResponse": {
            "type": "object",
            "properties": {
                "percent": {"type": "integer", "example": 80},
                "correct": {"type": "integer", "example": 48},
                "total": {"type": "integer", "example": 60},
                "passed": {"type": "boolean"},
                "wrong_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "mode": {"type": "string", "example": "mock"},
                "state": {"type": "string", "example": "in_progress"},
                "index": {"type": "integer"},
                "total": {"type": "integer", "example": 60},
                "answered": {"type": "integer"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/api.SessionQuestion"}},
                "started_at": {"type": "string"},
                "deadline": {"type": "string"},
                "remaining_seconds": {"type": "integer"},
                "retry_of": {"type": "string"},
                "result": {"$ref": "#/definitions/api.ResultResponse"}
            }
        },
        "api.SessionRecordResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "mode": {"type": "string", "example": "mock"},
                "retry_of": {"type": "string"},
                "percent": {"type": "integer", "example": 75},
                "correct": {"type": "integer", "example": 45},
                "total": {"type": "integer", "example": 60},
                "passed": {"type": "boolean"},
                "wrong_ids": {"type": "array", "items": {"type": "string"}},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quizdrill API",
	Description:      "Certification exam drill: question bank, practice and timed mock exams.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
