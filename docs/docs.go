// Package docs 由 api/controllers 与 main.go 中的 swag 注释生成，注释变更后执行 swag init 重新生成
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
        "/completitud": {
            "get": {
                "description": "按数据集ID计算完整性（completitud）评分，返回得分与诊断明细",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "完整性评分"
                ],
                "summary": "计算完整性评分",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "dataset_id",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "稀疏列阈值 (0,1]，默认取系统配置",
                        "name": "threshold",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/completeness.Result"
                        }
                    },
                    "400": {
                        "description": "缺少参数或数据集为空",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "数据集不存在",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "计算失败",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/completitud/columns": {
            "get": {
                "description": "返回每一列的缺失、空字符串、纯空白计数，空值比例及稀疏标记",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "完整性评分"
                ],
                "summary": "逐列空值统计",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "dataset_id",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "稀疏列阈值 (0,1]",
                        "name": "threshold",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/controllers.ColumnStatsResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/completitud/reports": {
            "post": {
                "description": "对数据集评分并保存为报告，保存后发布报告事件",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "完整性评分"
                ],
                "summary": "生成完整性报告",
                "parameters": [
                    {
                        "description": "报告请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.CreateReportRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.CompletenessReport"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            },
            "get": {
                "description": "按时间倒序返回数据集的历史完整性报告",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "完整性评分"
                ],
                "summary": "查询完整性报告",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "dataset_id",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "返回条数，默认20，最大200",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.CompletenessReport"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/config": {
            "get": {
                "description": "获取稀疏阈值、定时评分表达式等运行期配置",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "系统配置"
                ],
                "summary": "获取所有系统配置",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/config.ConfigItem"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/config/{key}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "系统配置"
                ],
                "summary": "获取单个配置",
                "parameters": [
                    {
                        "type": "string",
                        "description": "配置键",
                        "name": "key",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "更新指定键的配置值，保存前校验",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "系统配置"
                ],
                "summary": "更新配置",
                "parameters": [
                    {
                        "type": "string",
                        "description": "配置键",
                        "name": "key",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "更新配置请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.UpdateConfigRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/datasets": {
            "post": {
                "description": "按列定义和行数据创建数据集，单元格为 null 表示缺失值",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "创建数据集",
                "parameters": [
                    {
                        "description": "数据集定义",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dataset.CreateDatasetRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Dataset"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            },
            "get": {
                "description": "按创建时间倒序分页查询数据集",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "查询数据集列表",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "页码",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "每页条数",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Dataset"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/datasets/import": {
            "post": {
                "description": "上传CSV文件创建数据集，自动推断列类型",
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "导入CSV数据集",
                "parameters": [
                    {
                        "type": "file",
                        "description": "CSV文件",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "数据集名称",
                        "name": "name",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "id",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "描述",
                        "name": "description",
                        "in": "formData"
                    },
                    {
                        "type": "integer",
                        "description": "声明的列数",
                        "name": "expected_columns",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "字符编码 utf-8|latin1|windows-1252|gbk|gb18030",
                        "name": "encoding",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "分隔符，默认逗号",
                        "name": "delimiter",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Dataset"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/datasets/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "获取数据集",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Dataset"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "删除数据集",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/datasets/{id}/metadata": {
            "put": {
                "description": "整体替换数据集元数据，total_columnas 必须为整数",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "数据集"
                ],
                "summary": "更新数据集元数据",
                "parameters": [
                    {
                        "type": "string",
                        "description": "数据集ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "元数据",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/controllers.UpdateMetadataRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/controllers.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Dataset"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/controllers.APIResponse"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "检查服务健康状态",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "系统"
                ],
                "summary": "健康检查",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controllers.HealthResponse"
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "description": "检查数据库是否可达",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "系统"
                ],
                "summary": "就绪检查",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/controllers.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/controllers.HealthResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "completeness.ColumnKind": {
            "type": "string",
            "enum": [
                "numeric",
                "text",
                "bool"
            ],
            "x-enum-varnames": [
                "KindNumeric",
                "KindText",
                "KindBool"
            ]
        },
        "completeness.ColumnStats": {
            "type": "object",
            "properties": {
                "empty": {
                    "type": "integer"
                },
                "kind": {
                    "$ref": "#/definitions/completeness.ColumnKind"
                },
                "missing": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "null_percentage": {
                    "type": "number"
                },
                "sparse": {
                    "type": "boolean"
                },
                "total_nulls": {
                    "type": "integer"
                },
                "whitespace": {
                    "type": "integer"
                }
            }
        },
        "completeness.Details": {
            "type": "object",
            "properties": {
                "actual_columns": {
                    "type": "integer"
                },
                "column_completeness": {
                    "type": "number"
                },
                "column_coverage": {
                    "type": "number"
                },
                "data_completeness": {
                    "type": "number"
                },
                "expected_columns": {
                    "type": "integer"
                },
                "null_cell_percentage": {
                    "type": "number"
                },
                "sparse_columns": {
                    "type": "integer"
                },
                "total_cells": {
                    "type": "integer"
                },
                "total_nulls": {
                    "type": "integer"
                },
                "total_rows": {
                    "type": "integer"
                }
            }
        },
        "completeness.Result": {
            "type": "object",
            "properties": {
                "dataset_id": {
                    "type": "string"
                },
                "details": {
                    "$ref": "#/definitions/completeness.Details"
                },
                "max_score": {
                    "type": "number"
                },
                "metric": {
                    "type": "string"
                },
                "percentage": {
                    "type": "number"
                },
                "score": {
                    "type": "number"
                }
            }
        },
        "config.ConfigItem": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "is_default": {
                    "type": "boolean"
                },
                "key": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                },
                "value_type": {
                    "type": "string"
                }
            }
        },
        "controllers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "msg": {
                    "type": "string",
                    "example": "操作成功"
                },
                "status": {
                    "type": "integer",
                    "example": 200
                }
            }
        },
        "controllers.ColumnStatsResponse": {
            "type": "object",
            "properties": {
                "columns": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/completeness.ColumnStats"
                    }
                },
                "dataset_id": {
                    "type": "string"
                },
                "threshold": {
                    "type": "number"
                }
            }
        },
        "controllers.CreateReportRequest": {
            "type": "object",
            "properties": {
                "dataset_id": {
                    "type": "string",
                    "example": "personas-001"
                }
            }
        },
        "controllers.HealthResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "service": {
                    "type": "string",
                    "example": "datacensus-service"
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2024-01-01T00:00:00Z"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                }
            }
        },
        "controllers.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "msg": {
                    "type": "string",
                    "example": "操作成功"
                },
                "page": {
                    "type": "integer",
                    "example": 1
                },
                "size": {
                    "type": "integer",
                    "example": 10
                },
                "status": {
                    "type": "integer",
                    "example": 200
                },
                "total": {
                    "type": "integer",
                    "example": 100
                }
            }
        },
        "controllers.UpdateConfigRequest": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "value": {
                    "type": "string",
                    "example": "0.4"
                }
            }
        },
        "controllers.UpdateMetadataRequest": {
            "type": "object",
            "properties": {
                "metadata": {
                    "type": "object",
                    "additionalProperties": true
                }
            }
        },
        "dataset.ColumnDefinition": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string",
                    "example": "numeric"
                },
                "name": {
                    "type": "string",
                    "example": "edad"
                }
            }
        },
        "dataset.CreateDatasetRequest": {
            "type": "object",
            "properties": {
                "columns": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dataset.ColumnDefinition"
                    }
                },
                "description": {
                    "type": "string"
                },
                "id": {
                    "type": "string",
                    "example": "personas-001"
                },
                "metadata": {
                    "type": "object",
                    "additionalProperties": true
                },
                "name": {
                    "type": "string",
                    "example": "Personas"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "type": "array",
                        "items": {}
                    }
                }
            }
        },
        "models.CompletenessReport": {
            "type": "object",
            "properties": {
                "actual_columns": {
                    "type": "integer"
                },
                "column_completeness": {
                    "type": "number"
                },
                "column_coverage": {
                    "type": "number"
                },
                "created_at": {
                    "type": "string"
                },
                "data_completeness": {
                    "type": "number"
                },
                "dataset_id": {
                    "type": "string"
                },
                "expected_columns": {
                    "type": "integer"
                },
                "id": {
                    "type": "string"
                },
                "max_score": {
                    "type": "number"
                },
                "metric": {
                    "type": "string"
                },
                "null_cell_percentage": {
                    "type": "number"
                },
                "percentage": {
                    "type": "number"
                },
                "score": {
                    "type": "number"
                },
                "sparse_columns": {
                    "type": "integer"
                },
                "sparse_threshold": {
                    "type": "number"
                },
                "total_cells": {
                    "type": "integer"
                },
                "total_nulls": {
                    "type": "integer"
                },
                "total_rows": {
                    "type": "integer"
                },
                "trigger": {
                    "type": "string"
                }
            }
        },
        "models.Dataset": {
            "type": "object",
            "properties": {
                "checksum": {
                    "type": "string"
                },
                "columns": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.DatasetColumn"
                    }
                },
                "created_at": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "encoding": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "metadata": {
                    "type": "object",
                    "additionalProperties": true
                },
                "name": {
                    "type": "string"
                },
                "row_count": {
                    "type": "integer"
                },
                "source_format": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.DatasetColumn": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
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
	Title:            "数据完整性评分服务 API",
	Description:      "计算数据集完整性评分（completitud），提供数据集导入、评分报告与运行期配置接口",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
