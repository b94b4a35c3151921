package handler

// messageResponse is the envelope of every successful write.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}

// msgAllFieldsRequired is returned for any request failing schema validation.
const msgAllFieldsRequired = "All fields are required"

// --- Users ---

type createUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles"    validate:"omitempty,dive,required"`
}

// Active is a pointer so that false passes the required check.
type updateUserRequest struct {
	ID       string   `json:"id"       validate:"required"`
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles"    validate:"required,min=1,dive,required"`
	Active   *bool    `json:"active"   validate:"required"`
	Password string   `json:"password"`
}

// deleteRequest is checked by the services, which report a missing ID with
// their own message.
type deleteRequest struct {
	ID string `json:"id" query:"id"`
}

// --- Notes ---

type createNoteRequest struct {
	User  string `json:"user"  validate:"required"`
	Title string `json:"title" validate:"required"`
	Text  string `json:"text"  validate:"required"`
}

type updateNoteRequest struct {
	ID        string `json:"id"        validate:"required"`
	User      string `json:"user"      validate:"required"`
	Title     string `json:"title"     validate:"required"`
	Text      string `json:"text"      validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
}
