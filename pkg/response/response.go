package response

import "math"

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *ErrorData  `json:"error,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes one page of a list result
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination derives the page descriptor from the total row count
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{
		Page:        page,
		Limit:       limit,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// SuccessWithMessage wraps data and a human readable message
func SuccessWithMessage(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Paginated wraps one page of a list result
func Paginated(message string, data interface{}, p *Pagination) Response {
	return Response{Success: true, Message: message, Data: data, Pagination: p}
}

// Error builds an error envelope
func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorData{
			Code:    code,
			Message: message,
		},
	}
}

func BadRequest(message string) Response {
	return Error("BAD_REQUEST", message)
}

func ValidationError(message string) Response {
	return Error("VALIDATION_ERROR", message)
}

func NotFound(message string) Response {
	return Error("NOT_FOUND", message)
}

func Unauthorized(message string) Response {
	return Error("UNAUTHORIZED", message)
}

func Forbidden(message string) Response {
	return Error("FORBIDDEN", message)
}

func Conflict(message string) Response {
	return Error("CONFLICT", message)
}

// InternalError hides the underlying cause from the client
func InternalError() Response {
	return Error("INTERNAL_ERROR", "Internal server error")
}
