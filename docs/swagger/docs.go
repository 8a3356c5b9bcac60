// Package swagger is generated by swaggo/swag from the handler annotations.
package swagger

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
        "/catalog": {
            "get": {
                "description": "List catalog items, optionally filtered by category, stock and name.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List Catalog",
                "parameters": [
                    {"type": "string", "description": "Category", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Only items in (true) or out of (false) stock", "name": "inStock", "in": "query"},
                    {"type": "string", "description": "Name contains", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Catalog items", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CatalogItem"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/export": {
            "get": {
                "description": "Download the (filtered) catalog as an xlsx workbook.",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["catalog"],
                "summary": "Export Catalog",
                "parameters": [
                    {"type": "string", "description": "Category", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Stock filter", "name": "inStock", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Workbook", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get Catalog Item",
                "parameters": [
                    {"type": "string", "description": "Item ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Catalog item", "schema": {"$ref": "#/definitions/models.CatalogItem"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sync": {
            "post": {
                "description": "Reconcile the catalog with the ERS. The body is optional; createMissing defaults to true.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Run Sync",
                "parameters": [
                    {"description": "Run options", "name": "options", "in": "body", "schema": {"$ref": "#/definitions/reconcile.Options"}}
                ],
                "responses": {
                    "200": {"description": "Run report", "schema": {"$ref": "#/definitions/reconcile.Report"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "A run is already in progress", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Run failed", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/sync/last": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Last Sync Report",
                "responses": {
                    "200": {"description": "Last run report", "schema": {"$ref": "#/definitions/reconcile.Report"}},
                    "404": {"description": "No run yet", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "models.CatalogItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "subcategory": {"type": "string"},
                "price": {"type": "number"},
                "stock": {"type": "integer"},
                "inStock": {"type": "boolean"},
                "externalId": {"type": "string"},
                "externalCode": {"type": "string"},
                "externalArticle": {"type": "string"},
                "externalPriceListId": {"type": "string"},
                "externalWarehouseId": {"type": "string"},
                "priceUpdatedAt": {"type": "string"},
                "stockUpdatedAt": {"type": "string"},
                "description": {"type": "string"},
                "features": {"type": "array", "items": {"type": "string"}},
                "specs": {"type": "object", "additionalProperties": {"type": "string"}},
                "image": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "reconcile.Options": {
            "type": "object",
            "properties": {
                "priceListId": {"type": "string"},
                "warehouseId": {"type": "string"},
                "warehouseName": {"type": "string"},
                "company": {"type": "string"},
                "force": {"type": "boolean"},
                "syncStock": {"type": "boolean"},
                "dryRun": {"type": "boolean"},
                "createMissing": {"type": "boolean"},
                "lookupMissing": {"type": "boolean"}
            }
        },
        "reconcile.Report": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "state": {"type": "string"},
                "totalFetched": {"type": "integer"},
                "uniqueAfterDedup": {"type": "integer"},
                "duplicatesDropped": {"type": "integer"},
                "created": {"type": "integer"},
                "updated": {"type": "integer"},
                "priceUnchanged": {"type": "integer"},
                "notFound": {"type": "integer"},
                "skippedNoPrice": {"type": "integer"},
                "priceListId": {"type": "string"},
                "warehouseId": {"type": "string"},
                "warehouseIds": {"type": "array", "items": {"type": "integer"}},
                "warehouseName": {"type": "string"},
                "companyId": {"type": "string"},
                "stockSynced": {"type": "boolean"},
                "strategy": {"type": "string"},
                "degraded": {"type": "boolean"},
                "fetchAttempts": {"type": "array", "items": {"type": "object"}},
                "dryRun": {"type": "boolean"},
                "catalogSize": {"type": "integer"},
                "warnings": {"type": "array", "items": {"type": "object"}},
                "history": {"type": "array", "items": {"type": "object"}},
                "startedAt": {"type": "string"},
                "timestamp": {"type": "string"},
                "durationMs": {"type": "integer"}
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
	Title:            "Catalog Sync API",
	Description:      "API for reconciling the local catalog with the External Retail System.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
