package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Advance API",
        "description": "Salary advance request management API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, tokens and verification codes"},
        {"name": "Advances", "description": "Advance request review console"},
        {"name": "Drafts", "description": "Submission wizard"},
        {"name": "Payroll", "description": "Payroll employee roster"},
        {"name": "Stats", "description": "Dashboard aggregates"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate employee",
                "responses": {
                    "200": {"description": "Tokens and employee profile"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/auth/logout/all": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke every active session",
                "responses": {
                    "204": {"description": "All sessions revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current employee profile",
                "responses": {
                    "200": {"description": "Profile with eligible amount"}
                }
            }
        },
        "/auth/otp/request": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request a verification code",
                "responses": {
                    "202": {"description": "Code dispatched when the email is registered"}
                }
            }
        },
        "/auth/otp/verify": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Verify a code",
                "responses": {
                    "200": {"description": "Verified"},
                    "401": {"description": "Expired or mismatched code"}
                }
            }
        },
        "/advances": {
            "get": {
                "tags": ["Advances"],
                "summary": "List advance requests",
                "responses": {
                    "200": {"description": "Paginated requests"}
                }
            }
        },
        "/advances/{id}": {
            "get": {
                "tags": ["Advances"],
                "summary": "Advance request detail",
                "responses": {
                    "200": {"description": "Request with approvers"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/advances/{id}/decision": {
            "post": {
                "tags": ["Advances"],
                "summary": "Approve or decline a pending request",
                "responses": {
                    "200": {"description": "Updated request"},
                    "409": {"description": "Request already finalized"}
                }
            }
        },
        "/advances/{id}/cancel": {
            "post": {
                "tags": ["Advances"],
                "summary": "Cancel an own pending request",
                "responses": {
                    "200": {"description": "Cancelled request"},
                    "409": {"description": "Request already finalized"}
                }
            }
        },
        "/advances/drafts": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Start a submission draft",
                "responses": {
                    "201": {"description": "Draft state"}
                }
            }
        },
        "/advances/drafts/{id}": {
            "get": {
                "tags": ["Drafts"],
                "summary": "Draft state",
                "responses": {
                    "200": {"description": "Draft state"},
                    "404": {"description": "Draft not found or expired"}
                }
            }
        },
        "/advances/drafts/{id}/details": {
            "put": {
                "tags": ["Drafts"],
                "summary": "Save advance details",
                "responses": {
                    "200": {"description": "Draft advanced"},
                    "400": {"description": "Field errors"}
                }
            }
        },
        "/advances/drafts/{id}/verify": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Verify draft identity",
                "responses": {
                    "200": {"description": "Draft moved to review"},
                    "401": {"description": "Expired or mismatched code"}
                }
            }
        },
        "/advances/drafts/{id}/back": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Step the draft backwards",
                "responses": {
                    "200": {"description": "Draft state"}
                }
            }
        },
        "/advances/drafts/{id}/submit": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Submit the draft",
                "responses": {
                    "201": {"description": "Pending request created"},
                    "409": {"description": "Draft not ready"}
                }
            }
        },
        "/payroll/employees": {
            "get": {
                "tags": ["Payroll"],
                "summary": "List payroll employees",
                "responses": {
                    "200": {"description": "Paginated employees with eligible amounts"}
                }
            }
        },
        "/payroll/employees/export": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Export payroll employees",
                "responses": {
                    "200": {"description": "CSV or PDF download"}
                }
            }
        },
        "/stats/advances": {
            "get": {
                "tags": ["Stats"],
                "summary": "Monthly advance aggregates",
                "responses": {
                    "200": {"description": "Cached aggregates"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
