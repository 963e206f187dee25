package models

type OutlookEmail struct {
	ID             string `json:"id" binding:"required" validate:"required"`
	Subject        string `json:"subject" binding:"required" validate:"required"`
	Body           string `json:"body" binding:"required" validate:"required"`
	SenderName     string `json:"sender_name"`
	Sender         string `json:"sender" binding:"required" validate:"required"`
	ReceivedDate   string `json:"received_date"`
	HasAttachments bool   `json:"has_attachments"`
}

type TeamsMessage struct {
	ID          string   `json:"id" binding:"required" validate:"required"`
	Channel     string   `json:"channel" binding:"required" validate:"required"`
	SenderName  string   `json:"sender_name" binding:"required" validate:"required"`
	SenderEmail string   `json:"sender_email"`
	Message     string   `json:"message" binding:"required" validate:"required"`
	Timestamp   string   `json:"timestamp"`
	Mentions    []string `json:"mentions"`
}

type LoopTask struct {
	ID          string   `json:"id" binding:"required" validate:"required"`
	Title       string   `json:"title" binding:"required" validate:"required"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"due_date" binding:"required" validate:"required"`
	AssignedTo  string   `json:"assigned_to"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
}

// Sources is one batch of raw documents fed to the extraction pipeline.
type Sources struct {
	Emails []OutlookEmail `json:"emails" binding:"dive" validate:"dive"`
	Teams  []TeamsMessage `json:"teams" binding:"dive" validate:"dive"`
	Loop   []LoopTask     `json:"loop" binding:"dive" validate:"dive"`
}

// EmailItem and TodoItem are the inputs of the database-backed pipeline.
type EmailItem struct {
	Subject   string `json:"subject" binding:"required" validate:"required"`
	Sender    string `json:"sender"`
	EmailBody string `json:"email_body" binding:"required" validate:"required"`
}

type TodoItem struct {
	TaskTitle string  `json:"task_title" binding:"required" validate:"required"`
	ETADate   *string `json:"ETA_date"`
}

type ExtractRequest struct {
	Emails []EmailItem `json:"emails" binding:"dive"`
	Todos  []TodoItem  `json:"todos" binding:"dive"`
}
