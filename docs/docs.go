// Package docs holds the swagger document served under /swagger/.
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
        "/wallet/generate": {
            "post": {
                "description": "Generates a new seed, encrypts it with the wallet password and unlocks the wallet",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Generate new wallet",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.GenerateResponse"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/wallet/import": {
            "post": {
                "description": "Imports a seed given as 64 hex characters or a 24-word mnemonic",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Import wallet",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.GenerateResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Seed or mnemonic",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.ImportRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/wallet/unlock": {
            "post": {
                "description": "Decrypts the seed. Ten failed attempts lock the wallet for 30 minutes",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Unlock wallet",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.UnlockResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "423": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.UnlockRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/wallet/lock": {
            "post": {
                "description": "Zeroes the in-memory seed",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Lock wallet",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.UnlockResponse"
                        }
                    }
                }
            }
        },
        "/wallet/accounts": {
            "get": {
                "description": "GET lists the derived accounts, POST derives the next one",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "List or add accounts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.AccountsResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "GET lists the derived accounts, POST derives the next one",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "List or add accounts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.AccountsResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/wallet/balance": {
            "get": {
                "description": "Gets confirmed and pending balance of an account with its fiat value",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Get account balance",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.BalanceResponse"
                        }
                    },
                    "502": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account index",
                        "name": "index",
                        "in": "query"
                    }
                ]
            }
        },
        "/wallet/receive": {
            "get": {
                "description": "GET returns a payment URI and QR code, POST pockets all pending blocks",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Receive funds",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.PaymentRequestResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account index",
                        "name": "index",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Requested amount in NANO (GET only)",
                        "name": "amount",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "description": "GET returns a payment URI and QR code, POST pockets all pending blocks",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Receive funds",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.ReceivedResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account index",
                        "name": "index",
                        "in": "query"
                    }
                ]
            }
        },
        "/wallet/send": {
            "post": {
                "description": "Builds, signs and publishes a send block",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Send NANO",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.BlockResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "429": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Payment data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.SendRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/wallet/representative": {
            "post": {
                "description": "Publishes a change block delegating the account weight",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Change representative",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.BlockResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Representative",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.ChangeRepresentativeRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/wallet/history": {
            "get": {
                "description": "Gets account blocks with filtering capability",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Get account history",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.HistoryResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account index",
                        "name": "index",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Number of blocks to read",
                        "name": "count",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Transaction type: send or receive",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Block hash",
                        "name": "hash",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Minimum amount in NANO",
                        "name": "minAmount",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Maximum amount in NANO",
                        "name": "maxAmount",
                        "in": "query"
                    }
                ]
            }
        },
        "/wallet/export": {
            "get": {
                "description": "Returns the seed as hex and as a 24-word mnemonic. The wallet must be unlocked",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Export seed",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.ExportResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/wallet/backup": {
            "post": {
                "description": "Returns the seed sealed under the given backup password. The wallet must be unlocked",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Export encrypted backup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/vault.Backup"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Backup password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.BackupRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/wallet/restore": {
            "post": {
                "description": "Opens a backup from POST /wallet/backup and stores its seed under the wallet password",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wallet"
                ],
                "summary": "Restore encrypted backup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.GenerateResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Backup and its password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.RestoreRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/address/validate": {
            "get": {
                "description": "Checks prefix, alphabet and checksum of a xrb_ or nano_ address",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "address"
                ],
                "summary": "Validate address",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.AddressResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Address",
                        "name": "address",
                        "in": "query",
                        "required": true
                    }
                ]
            }
        },
        "/broadcasts": {
            "get": {
                "description": "Lists blocks currently waiting for proof of work or submission",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "broadcast"
                ],
                "summary": "List in-flight broadcasts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/model.BroadcastStatus"
                            }
                        }
                    }
                }
            }
        },
        "/addressbook": {
            "get": {
                "description": "Lists saved contacts",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "addressbook"
                ],
                "summary": "List contacts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/model.ContactsResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Saves a contact, renaming it when the address is already known",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "addressbook"
                ],
                "summary": "Save contact",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/model.Contact"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Contact",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/model.Contact"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "description": "Removes the contact for the given address",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "addressbook"
                ],
                "summary": "Remove contact",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/model.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "Address",
                        "name": "address",
                        "in": "query",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "model.BackupRequest": {
            "type": "object",
            "properties": {
                "password": {
                    "type": "string"
                }
            }
        },
        "model.Contact": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                }
            }
        },
        "model.ContactsResponse": {
            "type": "object",
            "properties": {
                "contacts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Contact"
                    }
                }
            }
        },
        "model.RestoreRequest": {
            "type": "object",
            "properties": {
                "backup": {
                    "$ref": "#/definitions/vault.Backup"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "vault.Backup": {
            "type": "object",
            "properties": {
                "version": {
                    "type": "integer"
                },
                "kdf": {
                    "type": "string"
                },
                "salt": {
                    "type": "string"
                },
                "seed": {
                    "type": "string"
                }
            }
        },
        "model.Account": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "address": {
                    "type": "string"
                }
            }
        },
        "model.AccountsResponse": {
            "type": "object",
            "properties": {
                "accounts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Account"
                    }
                }
            }
        },
        "model.AddressResponse": {
            "type": "object",
            "properties": {
                "valid": {
                    "type": "boolean"
                },
                "address": {
                    "type": "string"
                },
                "publicKey": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "model.BalanceResponse": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "address": {
                    "type": "string"
                },
                "balance": {
                    "type": "string"
                },
                "balance_raw": {
                    "type": "string"
                },
                "pending": {
                    "type": "string"
                },
                "pending_raw": {
                    "type": "string"
                },
                "representative": {
                    "type": "string"
                },
                "opened": {
                    "type": "boolean"
                },
                "currency": {
                    "type": "string"
                },
                "rate": {
                    "type": "string"
                },
                "fiat": {
                    "type": "string"
                }
            }
        },
        "model.BlockResponse": {
            "type": "object",
            "properties": {
                "hash": {
                    "type": "string"
                }
            }
        },
        "model.BroadcastStatus": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "root": {
                    "type": "string"
                },
                "intent": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                },
                "started": {
                    "type": "string"
                },
                "expires": {
                    "type": "string"
                }
            }
        },
        "model.ChangeRepresentativeRequest": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "representative": {
                    "type": "string"
                }
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                }
            }
        },
        "model.ExportResponse": {
            "type": "object",
            "properties": {
                "seed": {
                    "type": "string"
                },
                "mnemonic": {
                    "type": "string"
                }
            }
        },
        "model.GenerateResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                }
            }
        },
        "model.HistoryResponse": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "total_received": {
                    "type": "string"
                },
                "total_sent": {
                    "type": "string"
                },
                "transactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Transaction"
                    }
                }
            }
        },
        "model.ImportRequest": {
            "type": "object",
            "properties": {
                "secret": {
                    "type": "string"
                }
            }
        },
        "model.PaymentRequestResponse": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "uri": {
                    "type": "string"
                },
                "QR": {
                    "type": "string"
                }
            }
        },
        "model.ReceivedResponse": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "hashes": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "model.SendRequest": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "toAddress": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                }
            }
        },
        "model.Transaction": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "hash": {
                    "type": "string"
                },
                "account": {
                    "type": "string"
                },
                "contact": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                },
                "amount_raw": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "model.UnlockRequest": {
            "type": "object",
            "properties": {
                "password": {
                    "type": "string"
                }
            }
        },
        "model.UnlockResponse": {
            "type": "object",
            "properties": {
                "unlocked": {
                    "type": "boolean"
                },
                "address": {
                    "type": "string"
                }
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
	Title:            "Nano Wallet API",
	Description:      "Local Nano wallet: encrypted seed vault, state blocks, proof of work and broadcast.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
