package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>portfolio-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Every path is also served under the /api prefix.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "portfolio-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange the admin password for a session token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token returned" }, "401": { "description": "invalid credentials" }, "429": { "description": "rate limited" } }
      }
    },
    "/auth/verify": {
      "get": { "summary": "Confirm token validity", "security": [{"bearer": []}], "responses": { "200": { "description": "valid" }, "401": { "description": "missing, invalid or expired token" } } }
    },
    "/auth/change-password": {
      "post": {
        "summary": "Rotate the admin password",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"currentPassword":{"type":"string"},"newPassword":{"type":"string"}}}}}},
        "responses": { "200": { "description": "password changed" }, "400": { "description": "policy violation or unchanged" }, "401": { "description": "current password incorrect" } }
      }
    },
    "/content": {
      "get": { "summary": "Public content sections", "responses": { "200": { "description": "content" } } },
      "put": {
        "summary": "Replace one content section",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"section":{"type":"string","enum":["bio","skills","portfolio","services","experience","education","testimonials","contactInfo","cvUrl"]},"data":{}}}}}},
        "responses": { "200": { "description": "section updated" }, "400": { "description": "unknown section or invalid data" } }
      }
    },
    "/content/submissions": {
      "get": {
        "summary": "Paginated contact submissions, newest first",
        "security": [{"bearer": []}],
        "parameters": [
          { "name": "page", "in": "query", "schema": { "type": "integer", "default": 1 } },
          { "name": "limit", "in": "query", "schema": { "type": "integer", "default": 20, "maximum": 100 } }
        ],
        "responses": { "200": { "description": "submissions page" } }
      }
    },
    "/content/submissions/{id}": {
      "delete": { "summary": "Delete one submission", "security": [{"bearer": []}], "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/contact": {
      "post": {
        "summary": "Submit the contact form",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"firstName":{"type":"string"},"lastName":{"type":"string"},"email":{"type":"string"},"subject":{"type":"string"},"message":{"type":"string"}}}}}},
        "responses": { "200": { "description": "accepted" }, "400": { "description": "validation failed" }, "429": { "description": "rate limited" } }
      }
    },
    "/upload/image": {
      "post": { "summary": "Upload an image (field: image)", "security": [{"bearer": []}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"image":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "stored" }, "400": { "description": "wrong type or too large" } } }
    },
    "/upload/cv": {
      "post": { "summary": "Upload the CV PDF (field: cv)", "security": [{"bearer": []}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"cv":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "stored" }, "400": { "description": "wrong type or too large" } } }
    },
    "/upload/{filename}": {
      "delete": { "summary": "Delete a stored file", "security": [{"bearer": []}], "parameters": [{ "name": "filename", "in": "path", "required": true, "schema": { "type": "string" } }], "responses": { "200": { "description": "deleted" }, "403": { "description": "path outside the upload root" }, "404": { "description": "not found" } } }
    },
    "/download-cv": {
      "get": { "summary": "Download the latest CV", "responses": { "200": { "description": "PDF stream" }, "302": { "description": "redirect to the recorded CV URL" }, "404": { "description": "no CV" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
