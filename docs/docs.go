// Package docs provides the Swagger specification for the basket
// service API, registered with swag at init time.
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
        "/v1/basket/compare": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["basket"],
                "summary": "Compare a basket of barcodes across stores",
                "parameters": [
                    {
                        "description": "Basket to compare",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CompareRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CompareResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}}
                }
            }
        },
        "/v1/basket/evaluate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["basket"],
                "summary": "Evaluate a basket across stores",
                "parameters": [
                    {
                        "description": "Basket to evaluate",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.EvaluateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}}
                }
            }
        },
        "/v1/products/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Search products by name",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Search term (min 3 chars)",
                        "name": "q",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}}
                }
            }
        },
        "/v1/stores": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List active stores",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CompareItem": {
            "type": "object",
            "required": ["ean", "quantity"],
            "properties": {
                "ean": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "handlers.CompareRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/handlers.CompareItem"}
                },
                "storeIds": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "handlers.CompareResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {
                    "type": "array",
                    "items": {"type": "object"}
                },
                "unmatchedEans": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "handlers.EvaluateLine": {
            "type": "object",
            "required": ["productId", "quantity"],
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "handlers.EvaluateRequest": {
            "type": "object",
            "required": ["lines"],
            "properties": {
                "enabledStoreIds": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "lines": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/handlers.EvaluateLine"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Basket Service API",
	Description:      "Grocery basket price comparison across store chains.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
