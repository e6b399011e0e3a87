// Package docs is generated by swaggo/swag from the handler annotations.
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
            "email": "support@example.com"
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
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Show the status of server",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [{"description": "New user", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.PublicUser"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Email or username already taken", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive access and refresh tokens",
                "parameters": [{"description": "Credentials", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/auth/refresh-token": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.refreshResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out and revoke the refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/user/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Current user profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PublicUser"}}}
            }
        },
        "/api/v1/user/favorites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "List favorite recipes",
                "parameters": [
                    {"type": "integer", "description": "Page number (>= 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Recipe"}}}}
            }
        },
        "/api/v1/user/favorites/{recipeID}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Add a recipe to favorites",
                "parameters": [{"type": "string", "description": "Recipe ID", "name": "recipeID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Recipe not found", "schema": {"$ref": "#/definitions/common.AppError"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Remove a recipe from favorites",
                "parameters": [{"type": "string", "description": "Recipe ID", "name": "recipeID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Recipe not in favorites", "schema": {"$ref": "#/definitions/common.AppError"}}}
            }
        },
        "/api/v1/user/my_recipes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "List recipes generated by the current user",
                "parameters": [
                    {"type": "integer", "description": "Page number (>= 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Recipe"}}}}
            }
        },
        "/api/v1/recipes/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Generate recipes from ingredients",
                "parameters": [{"description": "Ingredients and preferences", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.GenerateRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Recipe"}}},
                    "500": {"description": "Generation failed", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/recipes/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Search recipes",
                "parameters": [
                    {"type": "string", "description": "Title contains", "name": "title", "in": "query"},
                    {"type": "string", "description": "Region contains", "name": "region", "in": "query"},
                    {"type": "string", "description": "Difficulty contains", "name": "difficulty", "in": "query"},
                    {"type": "integer", "description": "Page number (>= 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Recipe"}}}}
            }
        },
        "/api/v1/recipes/{recipeID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Get a recipe",
                "parameters": [{"type": "string", "description": "Recipe ID", "name": "recipeID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Recipe"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/v1/recipes/{recipeID}/rate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipes"],
                "summary": "Rate a recipe",
                "parameters": [
                    {"type": "string", "description": "Recipe ID", "name": "recipeID", "in": "path", "required": true},
                    {"description": "Score", "name": "rating", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RatingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Recipe"}},
                    "400": {"description": "Malformed ID or score out of range", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        }
    },
    "definitions": {
        "common.AppError": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "code": {"type": "integer"}, "message": {"type": "string"}}
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/model.PublicUser"},
                "access_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "handler.refreshResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "message": {"type": "string"}, "access_token": {"type": "string"}}
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}
        },
        "model.RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "fullName", "region", "password"],
            "properties": {
                "username": {"type": "string", "maxLength": 50, "minLength": 3},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "region": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "model.RatingRequest": {
            "type": "object",
            "required": ["score"],
            "properties": {"score": {"type": "number", "minimum": 0, "maximum": 5}}
        },
        "model.Ingredient": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "quantity": {"type": "string"}}
        },
        "model.GenerateRequest": {
            "type": "object",
            "required": ["ingredients"],
            "properties": {
                "ingredients": {"type": "array", "items": {"$ref": "#/definitions/model.Ingredient"}},
                "region": {"type": "string"},
                "dietary_preferences": {"type": "string"}
            }
        },
        "model.PublicUser": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "region": {"type": "string"},
                "favorites": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.RatingAggregate": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "average": {"type": "number"},
                "user_ratings": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "model.Recipe": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner": {"type": "string"},
                "title": {"type": "string"},
                "ingredients": {"type": "array", "items": {"$ref": "#/definitions/model.Ingredient"}},
                "instructions": {"type": "array", "items": {"type": "string"}},
                "region": {"type": "string"},
                "dietary_preferences": {"type": "string"},
                "prep_time_minutes": {"type": "integer"},
                "cook_time_minutes": {"type": "integer"},
                "servings": {"type": "integer"},
                "difficulty": {"type": "string", "enum": ["Easy", "Medium", "Hard"]},
                "tags": {"type": "array", "items": {"type": "string"}},
                "nutritional_info": {"type": "object"},
                "ratings": {"$ref": "#/definitions/model.RatingAggregate"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DishGuru API",
	Description:      "Recipe generation, search, favorites and ratings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
